// Package repomanager vends repository implementations bound to a DBTX and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkotelnikov/spotlist/internal/dbx"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/photos"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/spots"
)

// RepositoryManager hands out repositories bound to the provided DBTX, so
// services can run several repositories inside one transaction.
type RepositoryManager interface {
	Spots(db dbx.DBTX) spots.Repository
	Photos(db dbx.DBTX) photos.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
