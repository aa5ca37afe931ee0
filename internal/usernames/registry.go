// Package usernames keeps username reservations in the document store.
//
// A reservation is the document usernames/<lowercase name> holding
// {uid, email, createdAt}. Availability checks and claims are separate
// round-trips, so two concurrent claims of the same name can both pass the
// check; the store does not arbitrate.
package usernames

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
)

// Record is one reservation.
type Record struct {
	Username  string
	UID       string
	Email     string
	CreatedAt time.Time
}

// Registry reads and writes reservations.
type Registry struct {
	store      docstore.Store
	now        func() time.Time
	collection string
}

// NewRegistry stores reservations in the usernames collection of store. A nil
// sched means timex.Real().
func NewRegistry(store docstore.Store, sched timex.Scheduler) *Registry {
	if sched == nil {
		sched = timex.Real()
	}
	return &Registry{store: store, now: sched.Now, collection: common.UsernamesCollection}
}

// Normalize is the reservation key for username.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Lookup returns the reservation of username, nil when it is free.
func (r *Registry) Lookup(ctx context.Context, username string) (*Record, error) {
	key := Normalize(username)
	doc, err := r.store.Get(ctx, r.collection, key)
	if err != nil {
		return nil, fmt.Errorf("lookup username %q: %w", key, err)
	}
	if doc == nil {
		return nil, nil
	}
	rec := fromDocument(*doc)
	return &rec, nil
}

// FindByUID returns the reservation held by uid, nil when there is none. If
// several exist the first by key wins.
func (r *Registry) FindByUID(ctx context.Context, uid string) (*Record, error) {
	docs, err := r.store.Query(ctx, r.collection, "uid", uid)
	if err != nil {
		return nil, fmt.Errorf("find username of %s: %w", uid, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	rec := fromDocument(docs[0])
	return &rec, nil
}

// Claim writes the reservation of username for uid.
func (r *Registry) Claim(ctx context.Context, username, uid, email string) (Record, error) {
	rec := Record{
		Username:  Normalize(username),
		UID:       uid,
		Email:     email,
		CreatedAt: r.now().UTC(),
	}
	data := map[string]any{
		"uid":       rec.UID,
		"email":     rec.Email,
		"createdAt": rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := r.store.Set(ctx, r.collection, rec.Username, data); err != nil {
		return Record{}, fmt.Errorf("claim username %q: %w", rec.Username, err)
	}
	return rec, nil
}

// Release deletes the reservation of username.
func (r *Registry) Release(ctx context.Context, username string) error {
	key := Normalize(username)
	if err := r.store.Delete(ctx, r.collection, key); err != nil {
		return fmt.Errorf("release username %q: %w", key, err)
	}
	return nil
}

// UpdateEmail rewrites the email cached on uid's reservation. A uid without a
// reservation is not an error.
func (r *Registry) UpdateEmail(ctx context.Context, uid, email string) error {
	rec, err := r.FindByUID(ctx, uid)
	if err != nil || rec == nil {
		return err
	}
	if err := r.store.Update(ctx, r.collection, rec.Username, map[string]any{"email": email}); err != nil {
		return fmt.Errorf("update reservation email: %w", err)
	}
	return nil
}

func fromDocument(d docstore.Document) Record {
	rec := Record{
		Username: d.Key,
		UID:      d.String("uid"),
		Email:    d.String("email"),
	}
	if ts := d.String("createdAt"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec
}
