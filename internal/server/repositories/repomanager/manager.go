package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsmirnov/padkeeper/internal/dbx"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/groups"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/identities"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/pads"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Groups(db dbx.DBTX) groups.Repository
	Pads(db dbx.DBTX) pads.Repository
}
