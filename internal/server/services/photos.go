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

// PhotoService implements the add-photo and delete-photo procedures.
type PhotoService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	store storage.ObjectStore
	log   logging.Logger
}

func NewPhotoService(db *sql.DB, repos repomanager.RepositoryManager, store storage.ObjectStore, log logging.Logger) *PhotoService {
	return &PhotoService{db: db, repos: repos, store: store, log: log.With("module", "photo_service")}
}

// Add registers one photo's metadata in a single transaction. The parent
// spot must exist. A cover photo displaces any previous cover and updates
// the spot's denormalized cover URL in the same transaction, so at most one
// photo per spot carries the flag.
func (p *PhotoService) Add(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	photo.ID = uuid.NewString()

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		spotRepo := p.repos.Spots(tx)
		photoRepo := p.repos.Photos(tx)

		if _, err := spotRepo.GetByID(ctx, photo.SpotID); err != nil {
			return fmt.Errorf("looking up spot %s: %w", photo.SpotID, err)
		}

		if photo.IsCover {
			if err := photoRepo.ClearCover(ctx, photo.SpotID); err != nil {
				return err
			}
			if err := spotRepo.SetCoverPhotoURL(ctx, photo.SpotID, photo.PublicURL); err != nil {
				return err
			}
		}

		return photoRepo.Insert(ctx, photo)
	})
	if err != nil {
		return nil, fmt.Errorf("adding photo: %w", err)
	}

	return photo, nil
}

// Delete removes the photo row atomically and returns its storage path. The
// backing blob is then deleted best-effort; a blob-delete failure is logged
// and left to an out-of-band sweep, the committed row delete stands.
func (p *PhotoService) Delete(ctx context.Context, id string) (string, error) {
	var path string

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		photoRepo := p.repos.Photos(tx)

		photo, err := photoRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		path = photo.StoragePath
		return photoRepo.DeleteByID(ctx, id)
	})
	if err != nil {
		return "", err
	}

	if err := p.store.Delete(ctx, path); err != nil {
		p.log.Error(ctx, "deleting photo blob failed", "photo", id, "path", path, "error", err)
	}
	return path, nil
}
