package spots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/dbx"
	"github.com/dkotelnikov/spotlist/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a spot by id in one statement. The list_id of
// an existing row is deliberately left untouched. cover_photo_url is written
// only when the incoming value is non-empty: the photo registration path
// owns the column otherwise, and a merge carrying no cover must not clobber
// what that path has set.
func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Spot) error {
	criteria, err := json.Marshal(s.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}

	query := `
		INSERT INTO spots (id, list_id, name, address, category, description, comment, phone, website, score, criteria, cover_photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			comment = EXCLUDED.comment,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			score = EXCLUDED.score,
			criteria = EXCLUDED.criteria,
			cover_photo_url = CASE
				WHEN EXCLUDED.cover_photo_url <> '' THEN EXCLUDED.cover_photo_url
				ELSE spots.cover_photo_url
			END,
			updated_at = now();
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.ListID, s.Name, s.Address, s.Category, s.Description, s.Comment,
		s.Phone, s.Website, s.Score, criteria, s.CoverPhotoURL)
	if err != nil {
		return fmt.Errorf("upserting spot: %w", err)
	}
	return nil
}

// GetByID loads one spot row.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Spot, error) {
	query := `
		SELECT id, list_id, name, address, category, description, comment, phone, website,
			score, criteria, cover_photo_url, created_at, updated_at
		FROM spots WHERE id = $1
	`
	var s models.Spot
	var criteria []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ListID, &s.Name, &s.Address, &s.Category, &s.Description, &s.Comment,
		&s.Phone, &s.Website, &s.Score, &criteria, &s.CoverPhotoURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("selecting spot: %w", err)
	}
	if err := json.Unmarshal(criteria, &s.Criteria); err != nil {
		return nil, fmt.Errorf("decoding criteria: %w", err)
	}
	return &s, nil
}

// DeleteByID removes a spot row; photo rows cascade at the schema level.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting spot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ClearRating zeroes the rating fields.
func (r *PostgresRepository) ClearRating(ctx context.Context, id string) error {
	query := `UPDATE spots SET score = 0, criteria = '{}', updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clearing rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SetCoverPhotoURL updates the denormalized cover URL.
func (r *PostgresRepository) SetCoverPhotoURL(ctx context.Context, id, url string) error {
	query := `UPDATE spots SET cover_photo_url = $2, updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, url); err != nil {
		return fmt.Errorf("setting cover photo url: %w", err)
	}
	return nil
}
