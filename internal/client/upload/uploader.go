// Package upload implements the photo upload workflow: a single-photo unit
// that keeps blob and metadata consistent across two independent backends,
// and a coordinator that sequences units over a batch of entries.
package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/imaging"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

// Uploader pushes one normalized image through blob storage and metadata
// registration.
type Uploader struct {
	store storage.ObjectStore
	api   api.Client
	log   logging.Logger
}

func NewUploader(store storage.ObjectStore, client api.Client, log logging.Logger) *Uploader {
	return &Uploader{store: store, api: client, log: log.With("module", "uploader")}
}

// Upload stores the image bytes, resolves their public URL, and registers
// the photo's metadata through the atomic add-photo procedure.
//
// On any return, either the blob and its metadata row both exist and are
// linked, or neither exists: a failure after the blob was stored deletes it
// before the error propagates. Blob-delete failures during that compensation
// are logged and swallowed so the original error stays visible.
//
// onProgress (optional) receives 0-100 as bytes transfer; it reaches 100
// only after metadata registration succeeds.
func (u *Uploader) Upload(ctx context.Context, listID, spotID string, img *imaging.Normalized, isCover bool, onProgress func(int)) (*api.UploadedPhoto, error) {
	// Deterministic structure, unique per call: the random token rules out
	// path collisions between submissions.
	key := fmt.Sprintf("%s/%s/%s.%s", listID, spotID, uuid.NewString(), imaging.Ext(img.MimeType))

	body := newProgressReader(img.Data, onProgress)
	if err := u.store.Put(ctx, key, body, img.SizeBytes, img.MimeType); err != nil {
		// Nothing stored yet, nothing to roll back.
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUpload, err)
	}

	publicURL, err := u.store.PublicURL(ctx, key)
	if err != nil {
		u.deleteBlob(ctx, key)
		return nil, fmt.Errorf("%w: %v", common.ErrURLResolution, err)
	}

	photo, err := u.api.AddPhoto(ctx, api.AddPhotoRequest{
		ListID:      listID,
		SpotID:      spotID,
		StoragePath: key,
		PublicURL:   publicURL,
		Width:       img.Width,
		Height:      img.Height,
		SizeBytes:   img.SizeBytes,
		MimeType:    img.MimeType,
		SetAsCover:  isCover,
	})
	if err != nil {
		u.deleteBlob(ctx, key)
		return nil, err
	}

	if onProgress != nil {
		onProgress(100)
	}
	return photo, nil
}

func (u *Uploader) deleteBlob(ctx context.Context, key string) {
	if err := u.store.Delete(ctx, key); err != nil {
		u.log.Error(ctx, "compensating blob delete failed", "key", key, "error", err)
	}
}

// progressReader reports fractional transfer progress while the payload is
// being read. It stops at 99 so 100 stays reserved for a fully registered
// photo.
type progressReader struct {
	r          *bytes.Reader
	total      int
	read       int
	onProgress func(int)
}

func newProgressReader(data []byte, onProgress func(int)) *progressReader {
	return &progressReader{r: bytes.NewReader(data), total: len(data), onProgress: onProgress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += n
	if n > 0 && p.onProgress != nil && p.total > 0 {
		pct := p.read * 100 / p.total
		if pct > 99 {
			pct = 99
		}
		p.onProgress(pct)
	}
	return n, err
}
