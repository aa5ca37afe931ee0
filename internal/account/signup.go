package account

import (
	"context"
	"strings"
)

// SignUpInput is the registration form.
type SignUpInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// SignUp registers a new account, reserves its username and mails the
// verification link. The new session is signed out right away; the user has
// to verify the email and sign in.
//
// A failed verification mail does not undo the registration: the flow still
// succeeds and the failure is reported on its own.
func (c *Controller) SignUp(ctx context.Context, in SignUpInput) error {
	r := c.begin(ctx, FlowSignUp)
	c.closeEmailGate()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if in.Password != in.ConfirmPassword {
		return r.reject(msgConfirmMismatch, ErrValidation)
	}
	if !ValidUsername(username) {
		return r.reject(msgSignUpUsernameRule, ErrValidation)
	}
	if !StrongPassword(in.Password) {
		return r.reject(msgSignUpPasswordRule, ErrValidation)
	}

	r.submit()

	taken, err := c.names.Lookup(ctx, username)
	if err != nil {
		return r.failWith(signUpErrors, err)
	}
	if taken != nil {
		return r.fail(msgSignUpTaken, ErrUsernameTaken)
	}

	sess, err := c.id.CreateAccount(ctx, email, in.Password)
	if err != nil {
		return r.failWith(signUpErrors, err)
	}

	if _, err := c.names.Claim(ctx, username, sess.UID, email); err != nil {
		return r.failWith(signUpErrors, err)
	}

	msg := msgRegistered
	if err := c.id.SendVerificationEmail(ctx, sess); err != nil {
		c.log.Warn(ctx, "verification email not sent", "uid", sess.UID, "error", err)
		msg = msgVerificationFailed
	}

	if err := c.id.SignOut(ctx, sess); err != nil {
		c.log.Warn(ctx, "sign out after registration failed", "uid", sess.UID, "error", err)
	}

	r.succeed(msg)
	c.nav.Navigate(PageLogin)
	return nil
}
