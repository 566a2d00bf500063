package repomanager

import (
	"context"
	"database/sql"

	"github.com/stillmind/stillmind/internal/dbx"
	"github.com/stillmind/stillmind/internal/server/repositories/records"
	"github.com/stillmind/stillmind/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
}
