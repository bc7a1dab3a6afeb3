// Package repomanager hands out repository implementations bound to a DB
// handle or transaction, and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fieldreport/internal/dbx"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/people"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/reports"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Reports(db dbx.DBTX) reports.Repository
	People(db dbx.DBTX) people.Repository
}
