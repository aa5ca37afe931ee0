package account

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/popup"
)

// ChangeUsername moves the reservation of sess to newUsername. The old
// reservation is deleted before the new one is written; there is no
// transaction across the two documents.
func (c *Controller) ChangeUsername(ctx context.Context, sess *identity.Session, newUsername string) error {
	r := c.begin(ctx, FlowChangeUsername)

	username := strings.TrimSpace(newUsername)
	if username == "" {
		return r.reject(msgEnterUsername, ErrValidation)
	}
	if !ValidUsername(username) {
		return r.reject(msgRenameRule, ErrValidation)
	}
	if sess == nil {
		return r.reject(msgNoUser, ErrNoSession)
	}

	r.submit()

	taken, err := c.names.Lookup(ctx, username)
	if err != nil {
		return r.failWith(renameErrors, err)
	}
	if taken != nil {
		return r.fail(msgRenameTaken, ErrUsernameTaken)
	}

	old, err := c.names.FindByUID(ctx, sess.UID)
	if err != nil {
		return r.failWith(renameErrors, err)
	}
	if old != nil {
		if err := c.names.Release(ctx, old.Username); err != nil {
			return r.failWith(renameErrors, err)
		}
	}

	if _, err := c.names.Claim(ctx, username, sess.UID, sess.Email); err != nil {
		return r.failWith(renameErrors, err)
	}

	c.view.SetUsername(username)
	r.succeed(msgUsernameUpdated)
	c.pop.Hide()
	return nil
}

// VerifyForEmailChange is the first step of the email change: it
// reauthenticates sess with password and, on success, opens the new-email
// form. Nothing about the account changes yet.
func (c *Controller) VerifyForEmailChange(ctx context.Context, sess *identity.Session, password string) error {
	r := c.begin(ctx, FlowChangeEmail)
	c.closeEmailGate()

	if password == "" {
		return r.reject(msgEnterPassword, ErrValidation)
	}
	if sess == nil {
		return r.reject(msgNoUser, ErrNoSession)
	}

	r.submit()

	fresh, err := c.id.Reauthenticate(ctx, *sess, identity.EmailCredential(sess.Email, password))
	if err != nil {
		return r.failWith(verifyErrors, err)
	}

	c.openEmailGate(*sess, fresh)
	c.pop.Show(popup.EmailChangeForm, TitleEnterNewEmail)
	c.log.Info(ctx, "email change unlocked", "uid", sess.UID)
	c.setState(ctx, FlowChangeEmail, StateSuccess)
	c.setState(ctx, FlowChangeEmail, StateIdle)
	return nil
}

// ChangeEmail is the second step of the email change. The identity service
// mails a confirmation to newEmail and the address only changes once that is
// confirmed. The reservation's cached email is updated when one exists.
func (c *Controller) ChangeEmail(ctx context.Context, sess *identity.Session, newEmail string) error {
	r := c.begin(ctx, FlowChangeEmail)

	email := strings.TrimSpace(newEmail)
	if email == "" {
		return r.reject(msgEnterEmail, ErrValidation)
	}
	if !ValidEmail(email) {
		return r.reject(msgInvalidEmail, ErrValidation)
	}
	if sess == nil {
		c.closeEmailGate()
		return r.reject(msgNoUser, ErrNoSession)
	}
	if !c.EmailChangeAllowed(sess) {
		c.closeEmailGate()
		return r.reject(msgReauthFirst, ErrReauthRequired)
	}

	r.submit()

	if err := c.id.VerifyBeforeUpdateEmail(ctx, *sess, email); err != nil {
		return r.failWith(emailErrors, err)
	}
	if err := c.id.SendVerificationEmail(ctx, *sess); err != nil {
		return r.failWith(emailErrors, err)
	}
	if err := c.names.UpdateEmail(ctx, sess.UID, email); err != nil {
		c.log.Warn(ctx, "reservation email not updated", "uid", sess.UID, "error", err)
	}

	c.closeEmailGate()
	c.view.SetEmail(email)
	r.succeed(msgEmailRequested)
	c.pop.Hide()
	return nil
}

// PasswordInput is the change-password form.
type PasswordInput struct {
	Current string
	New     string
	Confirm string
}

// ChangePassword reauthenticates with the current password and sets the new
// one.
func (c *Controller) ChangePassword(ctx context.Context, sess *identity.Session, in PasswordInput) error {
	r := c.begin(ctx, FlowChangePassword)

	if in.Current == "" || in.New == "" || in.Confirm == "" {
		return r.reject(msgFillAll, ErrValidation)
	}
	if in.New != in.Confirm {
		return r.reject(msgNewMismatch, ErrValidation)
	}
	if !StrongPassword(in.New) {
		return r.reject(msgPasswordRule, ErrValidation)
	}
	if sess == nil {
		return r.reject(msgNoUser, ErrNoSession)
	}

	r.submit()

	fresh, err := c.id.Reauthenticate(ctx, *sess, identity.EmailCredential(sess.Email, in.Current))
	if err != nil {
		return r.failWith(passwordErrors, err)
	}
	if err := c.id.UpdatePassword(ctx, fresh, in.New); err != nil {
		return r.failWith(passwordErrors, err)
	}

	r.succeed(msgPasswordUpdated)
	c.pop.Hide()
	return nil
}
