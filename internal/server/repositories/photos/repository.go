// Package photos provides persistence for spot photo rows.
package photos

import (
	"context"

	"github.com/dkotelnikov/spotlist/internal/server/models"
)

// Repository is the persistence contract for spot photos.
type Repository interface {
	// Insert stores one photo row.
	Insert(ctx context.Context, p *models.Photo) error

	// GetByID returns the photo or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Photo, error)

	// DeleteByID removes the photo row. Returns common.ErrNotFound when no
	// row was deleted.
	DeleteByID(ctx context.Context, id string) error

	// ListBySpot returns all photos of a spot in insertion order.
	ListBySpot(ctx context.Context, spotID string) ([]*models.Photo, error)

	// ClearCover drops the cover flag from every photo of the spot.
	ClearCover(ctx context.Context, spotID string) error
}
