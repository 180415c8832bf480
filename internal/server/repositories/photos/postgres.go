package photos

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Photo) error {
	query := `
		INSERT INTO spot_photos (id, spot_id, list_id, storage_path, public_url, width, height, size_bytes, mime_type, is_cover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SpotID, p.ListID, p.StoragePath, p.PublicURL,
		p.Width, p.Height, p.SizeBytes, p.MimeType, p.IsCover)
	if err != nil {
		return fmt.Errorf("inserting photo: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, spot_id, list_id, storage_path, public_url, width, height, size_bytes, mime_type, is_cover, created_at
		FROM spot_photos WHERE id = $1
	`
	var p models.Photo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.SpotID, &p.ListID, &p.StoragePath, &p.PublicURL,
		&p.Width, &p.Height, &p.SizeBytes, &p.MimeType, &p.IsCover, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("selecting photo: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spot_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
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

func (r *PostgresRepository) ListBySpot(ctx context.Context, spotID string) ([]*models.Photo, error) {
	query := `
		SELECT id, spot_id, list_id, storage_path, public_url, width, height, size_bytes, mime_type, is_cover, created_at
		FROM spot_photos WHERE spot_id = $1 ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, spotID)
	if err != nil {
		return nil, fmt.Errorf("selecting photos: %w", err)
	}
	defer rows.Close()

	var result []*models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(
			&p.ID, &p.SpotID, &p.ListID, &p.StoragePath, &p.PublicURL,
			&p.Width, &p.Height, &p.SizeBytes, &p.MimeType, &p.IsCover, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ClearCover(ctx context.Context, spotID string) error {
	query := `UPDATE spot_photos SET is_cover = FALSE WHERE spot_id = $1 AND is_cover`
	if _, err := r.db.ExecContext(ctx, query, spotID); err != nil {
		return fmt.Errorf("clearing cover flags: %w", err)
	}
	return nil
}
