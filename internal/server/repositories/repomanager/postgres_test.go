package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/codes"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)

	m := NewPostgresRepositoryManager()

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &sessions.PostgresRepository{}, m.Sessions(db))
	assert.IsType(t, &codes.PostgresRepository{}, m.Codes(db))
	assert.IsType(t, &docstore.SQLStore{}, m.Documents(db))
}

func TestRunMigrations_UsesEmbeddedSchema(t *testing.T) {
	db, _ := newDB(t)

	orig := migrate
	t.Cleanup(func() { migrate = orig })

	var gotDialect string
	var files []string
	migrate = func(ctx context.Context, _ *sql.DB, fsys fs.FS, dialect string) error {
		gotDialect = dialect
		var err error
		files, err = fs.Glob(fsys, "*.sql")
		return err
	}

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, dbx.GoosePostgres, gotDialect)
	assert.Equal(t, []string{"00001_users.sql", "00002_verification_codes.sql", "00003_documents.sql"}, files)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	orig := migrate
	t.Cleanup(func() { migrate = orig })
	migrate = func(context.Context, *sql.DB, fs.FS, string) error { return errors.New("boom") }

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}
