// Package spots provides persistence for spot rows.
package spots

import (
	"context"

	"github.com/dkotelnikov/spotlist/internal/server/models"
)

// Repository is the persistence contract for spots. Implementations operate
// over a dbx.DBTX so the same code runs inside and outside a transaction.
type Repository interface {
	// Upsert inserts the spot or, when a row with the same id exists,
	// updates its mutable fields. ListID is never changed on update.
	Upsert(ctx context.Context, s *models.Spot) error

	// GetByID returns the spot or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Spot, error)

	// DeleteByID removes the spot row (photo rows cascade). Returns
	// common.ErrNotFound when no row was deleted.
	DeleteByID(ctx context.Context, id string) error

	// ClearRating zeroes the score and criteria of a spot.
	ClearRating(ctx context.Context, id string) error

	// SetCoverPhotoURL updates the denormalized cover photo URL.
	SetCoverPhotoURL(ctx context.Context, id, url string) error
}
