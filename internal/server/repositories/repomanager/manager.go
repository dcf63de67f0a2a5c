package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dashboard/internal/dbx"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/invoices"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Invoices(db dbx.DBTX) invoices.Repository
	Users(db dbx.DBTX) users.Repository
}
