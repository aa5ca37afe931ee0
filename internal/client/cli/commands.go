package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/siteaccounts/internal/account"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/notify"
	"github.com/dmitrijs2005/siteaccounts/internal/popup"
)

const (
	msgCancelled     = "Cancelled."
	msgNotSignedIn   = "Not signed in."
	msgEmailVerified = "Email confirmed."
	msgEnterCode     = "Please enter the code from the email."
	msgBadCode       = "This code is invalid or has expired."
	msgConfirmLogout = "Are you sure you want to log out? (y/N)"
)

// Register prompts for the sign-up form and runs the sign-up flow.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}

	return a.ctrl.SignUp(ctx, account.SignUpInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
}

// Login prompts for credentials and runs the sign-in flow. The page switches
// to index shortly after a successful sign-in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	return a.ctrl.SignIn(ctx, account.SignInInput{Email: email, Password: password})
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Current()
	if s == nil {
		printlnFn(msgNotSignedIn)
		return account.ErrNoSession
	}
	printlnFn(fmt.Sprintf("uid: %s\nemail: %s\nverified: %t", s.UID, s.Email, s.EmailVerified))
	return nil
}

// Manage opens the manage page; entering it loads the profile.
func (a *App) Manage(ctx context.Context) error {
	a.nav.Navigate(account.PageManage)
	return nil
}

// Logout asks for confirmation first; anything but y or yes keeps the
// session.
func (a *App) Logout(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, msgConfirmLogout, a.out)
	if err != nil {
		return err
	}
	if !yes(answer) {
		printlnFn(msgCancelled)
		return nil
	}
	return a.ctrl.Logout(ctx, a.session.Current())
}

func yes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}

// Back closes any open form and leaves the manage page.
func (a *App) Back(ctx context.Context) error {
	a.ctrl.ClosePopup()
	a.nav.Navigate(account.PageIndex)
	return nil
}

func (a *App) ChangeUsername(ctx context.Context) error {
	a.ctrl.OpenChangeUsername()
	return a.runPopup(ctx)
}

func (a *App) ChangeEmail(ctx context.Context) error {
	a.ctrl.OpenChangeEmail()
	return a.runPopup(ctx)
}

func (a *App) ChangePassword(ctx context.Context) error {
	a.ctrl.OpenChangePassword()
	return a.runPopup(ctx)
}

// runPopup prompts whichever form is open and submits it until the popup
// closes. A flow opening the next form (the email change does) keeps the
// loop going; a failed submit prompts the same form again.
func (a *App) runPopup(ctx context.Context) error {
	var last error
	for {
		id, open := a.modal.Active()
		if !open {
			return last
		}
		if !a.fillForm(id) {
			printlnFn(msgCancelled)
			return last
		}

		last = a.submit(ctx, id)
		if errors.Is(last, account.ErrNoSession) || errors.Is(last, account.ErrReauthRequired) {
			a.ctrl.ClosePopup()
			return last
		}
		if next, open := a.modal.Active(); open && next == id && last != nil {
			terminalPopup{w: a.out}.ShowOverlay(a.modal.Title())
		}
	}
}

func (a *App) submit(ctx context.Context, id popup.FormID) error {
	sess := a.session.Current()
	field := func(name string) string { return a.modal.Field(id, name) }

	switch id {
	case popup.UsernameForm:
		return a.ctrl.ChangeUsername(ctx, sess, field(popup.FieldNewUsername))
	case popup.EmailVerifyForm:
		return a.ctrl.VerifyForEmailChange(ctx, sess, field(popup.FieldVerifyPassword))
	case popup.EmailChangeForm:
		return a.ctrl.ChangeEmail(ctx, sess, field(popup.FieldNewEmail))
	case popup.PasswordForm:
		return a.ctrl.ChangePassword(ctx, sess, account.PasswordInput{
			Current: field(popup.FieldCurrentPassword),
			New:     field(popup.FieldNewPassword),
			Confirm: field(popup.FieldConfirmPassword),
		})
	}
	return fmt.Errorf("unknown form %q", id)
}

// codeFrom accepts either the bare code or the whole link from the email.
func codeFrom(input string) string {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil && u.Query().Has("code") {
		return u.Query().Get("code")
	}
	return input
}

// ConfirmEmail applies a code delivered by email. When signed in, the
// session is reloaded so the new verification state and email show up.
func (a *App) ConfirmEmail(ctx context.Context, code string) error {
	if code == "" {
		var err error
		if code, err = getSimpleText(a.reader, "Enter code or link", a.out); err != nil {
			return err
		}
	}
	code = codeFrom(code)
	if code == "" {
		a.notes.Notify(msgEnterCode, notify.Warning)
		return account.ErrValidation
	}

	if err := a.svc.ConfirmCode(ctx, code); err != nil {
		if errors.Is(err, identity.ErrInvalidCode) {
			a.notes.Notify(msgBadCode, notify.Error)
		} else {
			a.notes.Notify("Error: "+identity.DetailOf(err), notify.Error)
		}
		a.logger.Warn(ctx, "confirm code failed", "error", err)
		return err
	}
	a.notes.Notify(msgEmailVerified, notify.Success)

	sess := a.session.Current()
	if sess == nil {
		return nil
	}
	fresh, err := a.svc.Reload(ctx, *sess)
	if err != nil {
		a.logger.Warn(ctx, "reload after confirm failed", "error", err)
		return nil
	}
	if a.page() == account.PageManage {
		return a.ctrl.LoadProfile(ctx, &fresh)
	}
	return nil
}
