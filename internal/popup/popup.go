// Package popup coordinates the account-editing modal: at most one form is
// visible at a time, and closing the modal clears every form's fields.
package popup

import "sync"

// FormID identifies one editing form.
type FormID string

const (
	UsernameForm    FormID = "username-form"
	EmailVerifyForm FormID = "email-verify-form"
	EmailChangeForm FormID = "email-change-form"
	PasswordForm    FormID = "password-form"
)

// Field names, one namespace across all forms.
const (
	FieldNewUsername     = "new-username"
	FieldVerifyPassword  = "verify-password"
	FieldNewEmail        = "new-email"
	FieldCurrentPassword = "current-password"
	FieldNewPassword     = "new-password"
	FieldConfirmPassword = "confirm-password"
)

// Forms lists every form the coordinator manages.
var Forms = []FormID{UsernameForm, EmailVerifyForm, EmailChangeForm, PasswordForm}

// FormFields lists the fields of each form, in prompt order.
var FormFields = map[FormID][]string{
	UsernameForm:    {FieldNewUsername},
	EmailVerifyForm: {FieldVerifyPassword},
	EmailChangeForm: {FieldNewEmail},
	PasswordForm:    {FieldCurrentPassword, FieldNewPassword, FieldConfirmPassword},
}

// Surface toggles the visual state of the modal.
type Surface interface {
	ShowOverlay(title string)
	HideOverlay()
	ShowForm(id FormID)
	HideForm(id FormID)
	ResetForm(id FormID)
}

// Coordinator owns the modal visibility state and the field values.
type Coordinator struct {
	mu      sync.Mutex
	surface Surface
	active  FormID
	title   string
	fields  map[FormID]map[string]string
	onHide  []func()
}

// NewCoordinator returns a Coordinator driving surface; nil means no visuals.
func NewCoordinator(surface Surface) *Coordinator {
	if surface == nil {
		surface = nopSurface{}
	}
	return &Coordinator{surface: surface, fields: make(map[FormID]map[string]string)}
}

func known(id FormID) bool {
	_, ok := FormFields[id]
	return ok
}

// Show hides every other form and shows id with the given title. Unknown ids
// leave the state untouched.
func (c *Coordinator) Show(id FormID, title string) {
	if !known(id) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range Forms {
		c.surface.HideForm(f)
	}
	c.surface.ShowForm(id)
	c.surface.ShowOverlay(title)
	c.active = id
	c.title = title
}

// Hide closes the modal and resets the fields of all forms, whichever was active.
func (c *Coordinator) Hide() {
	c.mu.Lock()
	c.surface.HideOverlay()
	for _, f := range Forms {
		c.surface.ResetForm(f)
		c.surface.HideForm(f)
	}
	c.fields = make(map[FormID]map[string]string)
	c.active = ""
	c.title = ""
	hooks := append([]func(){}, c.onHide...)
	c.mu.Unlock()

	for _, h := range hooks {
		h()
	}
}

// OnHide registers f to run after every Hide.
func (c *Coordinator) OnHide(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHide = append(c.onHide, f)
}

// Active returns the visible form, if any.
func (c *Coordinator) Active() (FormID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.active != ""
}

// Title is the current modal title, empty when hidden.
func (c *Coordinator) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// SetField stores a value typed into a form field.
func (c *Coordinator) SetField(id FormID, name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.fields[id]
	if !ok {
		m = make(map[string]string)
		c.fields[id] = m
	}
	m[name] = value
}

// Field reads a form field; missing fields read as "".
func (c *Coordinator) Field(id FormID, name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[id][name]
}

type nopSurface struct{}

func (nopSurface) ShowOverlay(string) {}
func (nopSurface) HideOverlay() {}
func (nopSurface) ShowForm(FormID) {}
func (nopSurface) HideForm(FormID) {}
func (nopSurface) ResetForm(FormID) {}
