package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/codes"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so services can run several of them in one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Codes(db dbx.DBTX) codes.Repository
	Documents(db *sql.DB) docstore.Store
}
