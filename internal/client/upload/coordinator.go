package upload

import (
	"context"
	"fmt"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/client/batch"
	"github.com/dkotelnikov/spotlist/internal/imaging"
	"github.com/dkotelnikov/spotlist/internal/logging"
)

// Coordinator sequences upload units over the entries of a batch.
//
// Entries run strictly in insertion order, one at a time. Serializing them
// bounds the compensation work any single failure can create and keeps the
// per-entry progress meaningful to someone watching the list.
type Coordinator struct {
	normalizer *imaging.Normalizer
	uploader   *Uploader
	log        logging.Logger
}

func NewCoordinator(uploader *Uploader, log logging.Logger) *Coordinator {
	return &Coordinator{
		normalizer: imaging.NewNormalizer(),
		uploader:   uploader,
		log:        log.With("module", "coordinator"),
	}
}

// Run normalizes and uploads every entry of the batch for the given spot.
//
// On the first failure it marks the failed entry, stops dequeuing (later
// entries stay pending, untouched) and returns the error together with the
// ids of the photos already registered in this run. The caller compensates
// those; the coordinator never deletes registered photos itself.
func (c *Coordinator) Run(ctx context.Context, listID, spotID string, b *batch.Batch) (photos []api.UploadedPhoto, uploadedIDs []string, err error) {
	entries := b.Entries()
	if len(entries) == 0 {
		return nil, nil, nil
	}
	coverID := b.Cover()

	for _, e := range entries {
		entry, err := b.Begin(e.ID)
		if err != nil {
			return photos, uploadedIDs, fmt.Errorf("starting entry %s: %w", e.ID, err)
		}

		img, err := c.normalizer.Normalize(entry.Data, entry.MediaType)
		if err != nil {
			b.MarkError(entry.ID, err.Error())
			return photos, uploadedIDs, fmt.Errorf("normalizing %s: %w", entry.Filename, err)
		}

		c.log.Debug(ctx, "uploading entry",
			"entry", entry.ID, "file", entry.Filename, "bytes", img.SizeBytes)

		photo, err := c.uploader.Upload(ctx, listID, spotID, img, entry.ID == coverID, func(p int) {
			b.SetProgress(entry.ID, p)
		})
		if err != nil {
			b.MarkError(entry.ID, err.Error())
			return photos, uploadedIDs, fmt.Errorf("uploading %s: %w", entry.Filename, err)
		}

		b.MarkSuccess(entry.ID)
		photos = append(photos, *photo)
		uploadedIDs = append(uploadedIDs, photo.ID)
	}

	return photos, uploadedIDs, nil
}
