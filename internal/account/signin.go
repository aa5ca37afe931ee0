package account

import (
	"context"
	"strings"
)

// SignInInput is the login form.
type SignInInput struct {
	Email    string
	Password string
}

// SignIn authenticates and, once the success notification had time to
// render, navigates to the index page. Accounts with an unverified email get
// a fresh verification mail and are signed out again.
func (c *Controller) SignIn(ctx context.Context, in SignInInput) error {
	r := c.begin(ctx, FlowSignIn)
	c.closeEmailGate()

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return r.reject(msgEnterBoth, ErrValidation)
	}

	r.submit()

	sess, err := c.id.SignIn(ctx, email, in.Password)
	if err != nil {
		return r.failWith(signInErrors, err)
	}

	if !sess.EmailVerified {
		c.show(msgNotVerified)
		if err := c.id.SendVerificationEmail(ctx, sess); err != nil {
			c.show(signInErrors.message(err))
			c.log.Warn(ctx, "verification email not sent", "uid", sess.UID, "error", err)
		}
		if err := c.id.SignOut(ctx, sess); err != nil {
			c.log.Warn(ctx, "sign out of unverified account failed", "uid", sess.UID, "error", err)
		}
		c.setState(ctx, FlowSignIn, StateFailure)
		c.setState(ctx, FlowSignIn, StateIdle)
		return ErrEmailNotVerified
	}

	r.succeed(msgLoggedIn)
	c.sched.AfterFunc(c.delay, func() { c.nav.Navigate(PageIndex) })
	return nil
}
