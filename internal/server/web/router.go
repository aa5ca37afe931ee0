// Package web serves the plain HTTP side of the development backend: the
// links mailed with verification codes and a health probe.
package web

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/siteaccounts/internal/logging"
)

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Confirmer applies a code delivered by email.
type Confirmer interface {
	ConfirmCode(ctx context.Context, code string) error
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DB        Pinger
	Confirmer Confirmer
	Logger    logging.Logger
}

// NewRouter creates a chi router with the verification and health routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)

	h := &handlers{db: deps.DB, confirmer: deps.Confirmer, log: deps.Logger.With("module", "web")}
	r.Get("/healthz", h.health)
	r.Get("/verify", h.verify)

	return r
}
