package account

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
)

// LoadProfile fills the manage page for sess. Without a session it sends the
// user to the login page.
func (c *Controller) LoadProfile(ctx context.Context, sess *identity.Session) error {
	if sess == nil {
		c.closeEmailGate()
		c.nav.Navigate(PageLogin)
		return nil
	}

	c.view.SetEmail(sess.Email)

	rec, err := c.names.FindByUID(ctx, sess.UID)
	if err != nil {
		c.log.Error(ctx, "load username failed", "uid", sess.UID, "error", err)
		c.view.SetUsername(UsernameLoadError)
		return fmt.Errorf("load profile: %w", err)
	}
	if rec == nil {
		c.view.SetUsername(NoUsername)
		return nil
	}
	c.view.SetUsername(rec.Username)
	return nil
}

// Logout signs sess out and returns to the index page.
func (c *Controller) Logout(ctx context.Context, sess *identity.Session) error {
	c.closeEmailGate()
	if sess == nil {
		c.show(msgNoUser)
		return ErrNoSession
	}
	if err := c.id.SignOut(ctx, *sess); err != nil {
		c.log.Error(ctx, "logout failed", "uid", sess.UID, "error", err)
		c.show(msgLogoutFailed)
		return fmt.Errorf("logout: %w", err)
	}
	c.show(msgLoggedOut)
	c.nav.Navigate(PageIndex)
	return nil
}
