package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/siteaccounts/internal/account"
	"github.com/dmitrijs2005/siteaccounts/internal/client/profilecache"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
)

// profileStore is the part of profilecache.Cache the display needs.
type profileStore interface {
	Load(ctx context.Context) (*profilecache.Profile, error)
	Save(ctx context.Context, p profilecache.Profile) error
	Clear(ctx context.Context) error
}

// profileView prints the manage page fields and keeps them in the profile
// cache so the prompt can show them.
type profileView struct {
	mu       sync.Mutex
	w        io.Writer
	cache    profileStore
	session  func() *identity.Session
	log      logging.Logger
	username string
	email    string
}

func newProfileView(w io.Writer, cache profileStore, session func() *identity.Session, l logging.Logger) *profileView {
	return &profileView{w: w, cache: cache, session: session, log: l}
}

// restore loads the last cached profile.
func (v *profileView) restore(ctx context.Context) {
	p, err := v.cache.Load(ctx)
	if err != nil {
		v.log.Warn(ctx, "profile cache not loaded", "error", err)
		return
	}
	if p == nil {
		return
	}
	v.mu.Lock()
	v.username, v.email = p.Username, p.Email
	v.mu.Unlock()
}

func (v *profileView) SetUsername(username string) {
	v.mu.Lock()
	v.username = username
	v.mu.Unlock()
	fmt.Fprintf(v.w, "Username: %s\n", username)
	v.save()
}

func (v *profileView) SetEmail(email string) {
	v.mu.Lock()
	v.email = email
	v.mu.Unlock()
	fmt.Fprintf(v.w, "Email: %s\n", email)
	v.save()
}

func (v *profileView) save() {
	ctx := context.Background()
	s := v.session()
	if s == nil {
		return
	}

	v.mu.Lock()
	p := profilecache.Profile{UID: s.UID, Email: v.email, Username: v.username}
	v.mu.Unlock()

	if err := v.cache.Save(ctx, p); err != nil {
		v.log.Warn(ctx, "profile cache not saved", "error", err)
	}
}

// clear forgets the profile, in memory and on disk.
func (v *profileView) clear(ctx context.Context) {
	v.mu.Lock()
	v.username, v.email = "", ""
	v.mu.Unlock()
	if err := v.cache.Clear(ctx); err != nil {
		v.log.Warn(ctx, "profile cache not cleared", "error", err)
	}
}

// label is the prompt status: the username when known, else the email.
func (v *profileView) label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.username {
	case "", account.NoUsername, account.UsernameLoadError:
		return v.email
	}
	return v.username
}
