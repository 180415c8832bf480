package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/dbx"
)

// SQLiteStore persists drafts in a local SQLite database so an abandoned
// form survives a restart of the client.
type SQLiteStore struct {
	db dbx.DBTX
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the drafts table if it does not exist yet.
func (s *SQLiteStore) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS drafts (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		saved_at TEXT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating drafts table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, d *Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}

	query := `INSERT INTO drafts (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	if _, err := s.db.ExecContext(ctx, query, key, payload, d.SavedAt.UTC().Format("2006-01-02T15:04:05Z07:00")); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*Draft, error) {
	var payload []byte
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM drafts WHERE key = ?`, key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}
