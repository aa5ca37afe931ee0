package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	msgConfirmed   = "Your email address has been confirmed. You can return to the app."
	msgInvalidLink = "This link is invalid or has expired."
	msgMissingCode = "missing code"
	msgFailed      = "The link could not be processed. Please try again later."
	msgEmailTaken  = "This email address is already used by another account."
	msgRejected    = "This link could not be applied."
)

type handlers struct {
	db        Pinger
	confirmer Confirmer
	log       logging.Logger
}

type healthData struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	data := healthData{Status: "healthy", Database: "up"}
	code := http.StatusOK

	if h.db == nil {
		data.Database = "none"
	} else if err := h.db.PingContext(r.Context()); err != nil {
		h.log.Warn(r.Context(), "database ping failed", "error", err)
		data = healthData{Status: "degraded", Database: "down"}
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, msgMissingCode, http.StatusBadRequest)
		return
	}

	err := h.confirmer.ConfirmCode(r.Context(), code)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(msgConfirmed + "\n"))
	case errors.Is(err, identity.ErrInvalidCode):
		http.Error(w, msgInvalidLink, http.StatusBadRequest)
	case errors.Is(err, identity.ErrEmailInUse):
		http.Error(w, msgEmailTaken, http.StatusConflict)
	case rejected(err):
		h.log.Warn(r.Context(), "confirm code rejected",
			"error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		http.Error(w, msgRejected, http.StatusBadRequest)
	default:
		h.log.Error(r.Context(), "confirm code failed",
			"error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		http.Error(w, msgFailed, http.StatusInternalServerError)
	}
}

// rejected reports coded identity failures other than internal ones.
func rejected(err error) bool {
	c := identity.CodeOf(err)
	return c != "" && c != identity.CodeInternal
}
