package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/imaging"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func normalized(t *testing.T) *imaging.Normalized {
	t.Helper()
	img, err := imaging.NewNormalizer().Normalize(testJPEG(t, 64, 48), "image/jpeg")
	require.NoError(t, err)
	return img
}

// flakyStore wraps MemStore with per-call failure injection.
type flakyStore struct {
	*storage.MemStore
	failPut    bool
	failURL    bool
	failDelete bool

	mu      sync.Mutex
	deletes []string
}

func (s *flakyStore) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if s.failPut {
		return errors.New("storage down")
	}
	return s.MemStore.Put(ctx, key, r, size, ct)
}

func (s *flakyStore) PublicURL(ctx context.Context, key string) (string, error) {
	if s.failURL {
		return "", errors.New("no public url")
	}
	return s.MemStore.PublicURL(ctx, key)
}

func (s *flakyStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, keys...)
	s.mu.Unlock()
	if s.failDelete {
		return errors.New("delete failed")
	}
	return s.MemStore.Delete(ctx, keys...)
}

// fakeAPI implements api.Client with failure injection.
type fakeAPI struct {
	mu sync.Mutex

	addCalls  int
	failAddAt int // 1-based call number that fails, 0 = never
	added     []api.AddPhotoRequest

	deletedPhotos  []string
	deletePhotoErr error

	mergeSpotID string
	mergeErr    error
	mergeCalls  int
	mergeReqs   []api.MergeSpotRequest

	deletedSpots  []string
	deleteSpotErr error
}

func (f *fakeAPI) MergeSpot(_ context.Context, req api.MergeSpotRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	f.mergeReqs = append(f.mergeReqs, req)
	if f.mergeErr != nil {
		return "", f.mergeErr
	}
	if req.SpotID != "" {
		return req.SpotID, nil
	}
	return f.mergeSpotID, nil
}

func (f *fakeAPI) AddPhoto(_ context.Context, req api.AddPhotoRequest) (*api.UploadedPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.failAddAt != 0 && f.addCalls == f.failAddAt {
		return nil, fmt.Errorf("%w: injected", common.ErrMetadataRegistration)
	}
	f.added = append(f.added, req)
	return &api.UploadedPhoto{
		ID:          uuid.NewString(),
		StoragePath: req.StoragePath,
		PublicURL:   req.PublicURL,
		Width:       req.Width,
		Height:      req.Height,
		SizeBytes:   req.SizeBytes,
		MimeType:    req.MimeType,
		IsCover:     req.SetAsCover,
	}, nil
}

func (f *fakeAPI) DeletePhoto(_ context.Context, photoID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deletePhotoErr != nil {
		return "", f.deletePhotoErr
	}
	f.deletedPhotos = append(f.deletedPhotos, photoID)
	return "some/path.jpg", nil
}

func (f *fakeAPI) DeleteSpot(_ context.Context, spotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteSpotErr != nil {
		return f.deleteSpotErr
	}
	f.deletedSpots = append(f.deletedSpots, spotID)
	return nil
}

func (f *fakeAPI) DeleteRating(_ context.Context, _ string) error { return nil }

func TestUpload_Success(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore()}
	client := &fakeAPI{}
	u := NewUploader(store, client, testLogger())

	var progress []int
	photo, err := u.Upload(context.Background(), "list-1", "spot-1", normalized(t), true, func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len(), "blob stored")
	_, ok := store.Object(photo.StoragePath)
	assert.True(t, ok, "metadata references the stored blob")
	assert.True(t, photo.IsCover)
	assert.Equal(t, "mem://"+photo.StoragePath, photo.PublicURL)

	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1], "progress never regresses")
	}
}

func TestUpload_StorageFailureNeedsNoCompensation(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore(), failPut: true}
	client := &fakeAPI{}
	u := NewUploader(store, client, testLogger())

	_, err := u.Upload(context.Background(), "list-1", "spot-1", normalized(t), false, nil)
	require.ErrorIs(t, err, common.ErrStorageUpload)

	assert.Empty(t, store.deletes, "nothing to roll back")
	assert.Zero(t, client.addCalls)
}

func TestUpload_URLResolutionFailureDeletesBlob(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore(), failURL: true}
	client := &fakeAPI{}
	u := NewUploader(store, client, testLogger())

	_, err := u.Upload(context.Background(), "list-1", "spot-1", normalized(t), false, nil)
	require.ErrorIs(t, err, common.ErrURLResolution)

	assert.Len(t, store.deletes, 1)
	assert.Equal(t, 0, store.Len(), "blob compensated away")
	assert.Zero(t, client.addCalls)
}

func TestUpload_MetadataFailureDeletesBlob(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore()}
	client := &fakeAPI{failAddAt: 1}
	u := NewUploader(store, client, testLogger())

	_, err := u.Upload(context.Background(), "list-1", "spot-1", normalized(t), false, nil)
	require.ErrorIs(t, err, common.ErrMetadataRegistration)

	assert.Len(t, store.deletes, 1)
	assert.Equal(t, 0, store.Len(), "neither blob nor metadata survives")
}

func TestUpload_CompensationFailureKeepsOriginalError(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore(), failDelete: true}
	client := &fakeAPI{failAddAt: 1}
	u := NewUploader(store, client, testLogger())

	_, err := u.Upload(context.Background(), "list-1", "spot-1", normalized(t), false, nil)
	assert.ErrorIs(t, err, common.ErrMetadataRegistration, "cleanup error never masks the upload error")
}

func TestUpload_UniqueStoragePaths(t *testing.T) {
	store := &flakyStore{MemStore: storage.NewMemStore()}
	client := &fakeAPI{}
	u := NewUploader(store, client, testLogger())

	img := normalized(t)
	p1, err := u.Upload(context.Background(), "list-1", "spot-1", img, false, nil)
	require.NoError(t, err)
	p2, err := u.Upload(context.Background(), "list-1", "spot-1", img, false, nil)
	require.NoError(t, err)

	assert.NotEqual(t, p1.StoragePath, p2.StoragePath)
	assert.Contains(t, p1.StoragePath, "list-1/spot-1/")
}
