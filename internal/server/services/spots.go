// Package services implements the atomic procedures the submission workflow
// calls: each method is at most one database transaction plus best-effort
// blob cleanup. The server never coordinates across storage and database;
// that consistency burden is the client saga's.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkotelnikov/spotlist/internal/dbx"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/server/models"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/repomanager"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

// SpotService implements the merge-spot, delete-spot and delete-rating
// procedures.
type SpotService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	store storage.ObjectStore
	log   logging.Logger
}

func NewSpotService(db *sql.DB, repos repomanager.RepositoryManager, store storage.ObjectStore, log logging.Logger) *SpotService {
	return &SpotService{db: db, repos: repos, store: store, log: log.With("module", "spot_service")}
}

// Merge creates or updates a spot's core record and rating in one atomic
// write and returns the spot id. An empty incoming id means create; the
// server assigns the identity.
func (s *SpotService) Merge(ctx context.Context, spot *models.Spot) (string, error) {
	if spot.ID == "" {
		spot.ID = uuid.NewString()
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Spots(tx).Upsert(ctx, spot)
	})
	if err != nil {
		return "", fmt.Errorf("merging spot: %w", err)
	}

	return spot.ID, nil
}

// Get returns one spot.
func (s *SpotService) Get(ctx context.Context, id string) (*models.Spot, error) {
	return s.repos.Spots(s.db).GetByID(ctx, id)
}

// Delete removes the spot row (photo rows cascade) and then best-effort
// deletes the backing blobs. Blob cleanup failures are logged, not
// surfaced: the row delete has already committed.
func (s *SpotService) Delete(ctx context.Context, id string) error {
	var paths []string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		photoRows, err := s.repos.Photos(tx).ListBySpot(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range photoRows {
			paths = append(paths, p.StoragePath)
		}
		return s.repos.Spots(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	if len(paths) > 0 {
		if err := s.store.Delete(ctx, paths...); err != nil {
			s.log.Error(ctx, "deleting spot blobs failed", "spot", id, "error", err)
		}
	}
	return nil
}

// ClearRating zeroes the rating fields of a spot.
func (s *SpotService) ClearRating(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Spots(tx).ClearRating(ctx, id)
	})
}
