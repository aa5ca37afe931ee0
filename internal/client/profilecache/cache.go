// Package profilecache remembers the last profile shown by the CLI in a
// local sqlite file, so the prompt can greet the user before the backend
// answers.
package profilecache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/client/migrations"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	_ "modernc.org/sqlite"
)

const (
	collection = "profile"
	currentKey = "current"
)

// Profile is the cached view of the signed-in user.
type Profile struct {
	UID       string
	Email     string
	Username  string
	UpdatedAt time.Time
}

// Cache stores a single Profile.
type Cache struct {
	db    *sql.DB
	store docstore.Store
	now   func() time.Time
}

// Open opens (creating if needed) the sqlite file at dsn and applies the
// embedded migrations.
func Open(ctx context.Context, dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile cache: %w", err)
	}
	// one writer; a shared in-memory database needs a single connection
	db.SetMaxOpenConns(1)

	if err := dbx.Migrate(ctx, db, migrations.Migrations, dbx.GooseSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate profile cache: %w", err)
	}
	return &Cache{db: db, store: docstore.NewSQLStore(db, docstore.DialectSQLite), now: time.Now}, nil
}

// Load returns the cached profile, nil when there is none.
func (c *Cache) Load(ctx context.Context) (*Profile, error) {
	doc, err := c.store.Get(ctx, collection, currentKey)
	if err != nil || doc == nil {
		return nil, err
	}
	p := &Profile{
		UID:      doc.String("uid"),
		Email:    doc.String("email"),
		Username: doc.String("username"),
	}
	if ts := doc.String("updatedAt"); ts != "" {
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return p, nil
}

// Save replaces the cached profile.
func (c *Cache) Save(ctx context.Context, p Profile) error {
	return c.store.Set(ctx, collection, currentKey, map[string]any{
		"uid":       p.UID,
		"email":     p.Email,
		"username":  p.Username,
		"updatedAt": c.now().UTC().Format(time.RFC3339Nano),
	})
}

// Clear forgets the cached profile.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, collection, currentKey)
}

func (c *Cache) Close() error {
	return c.db.Close()
}
