package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/siteaccounts/internal/popup"
)

// fieldPrompts is the label shown for each popup field.
var fieldPrompts = map[string]string{
	popup.FieldNewUsername:     "New username",
	popup.FieldVerifyPassword:  "Current password",
	popup.FieldNewEmail:        "New email",
	popup.FieldCurrentPassword: "Current password",
	popup.FieldNewPassword:     "New password",
	popup.FieldConfirmPassword: "Confirm new password",
}

func isSecret(field string) bool {
	return strings.HasSuffix(field, "password")
}

// terminalPopup renders the modal as a header line. Forms have no visual
// state of their own in a terminal, so only the overlay prints.
type terminalPopup struct {
	w io.Writer
}

func (t terminalPopup) ShowOverlay(title string) { fmt.Fprintf(t.w, "--- %s ---\n", title) }
func (t terminalPopup) HideOverlay()            {}
func (t terminalPopup) ShowForm(popup.FormID)   {}
func (t terminalPopup) HideForm(popup.FormID)   {}
func (t terminalPopup) ResetForm(popup.FormID)  {}

// fillForm prompts every field of the active form into the coordinator. An
// empty answer to the first prompt, or a read error, closes the popup and
// reports false.
func (a *App) fillForm(id popup.FormID) bool {
	for i, field := range popup.FormFields[id] {
		var (
			value string
			err   error
		)
		if isSecret(field) {
			value, err = getPassword(fieldPrompts[field], a.out)
		} else {
			value, err = getSimpleText(a.reader, fieldPrompts[field], a.out)
		}
		if err != nil || (i == 0 && value == "") {
			a.modal.Hide()
			return false
		}
		a.modal.SetField(id, field, value)
	}
	return true
}
