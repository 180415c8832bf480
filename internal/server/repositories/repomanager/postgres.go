package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dkotelnikov/spotlist/internal/dbx"
	"github.com/dkotelnikov/spotlist/internal/server/migrations"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/photos"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/spots"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Spots returns a spots.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Spots(db dbx.DBTX) spots.Repository {
	return spots.NewPostgresRepository(db)
}

// Photos returns a photos.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Photos(db dbx.DBTX) photos.Repository {
	return photos.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
