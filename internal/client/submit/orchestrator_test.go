package submit

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
	"github.com/dkotelnikov/spotlist/internal/client/batch"
	"github.com/dkotelnikov/spotlist/internal/client/drafts"
	"github.com/dkotelnikov/spotlist/internal/client/upload"
	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: uint8(3 * x), G: uint8(5 * y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// fakeAPI implements api.Client, recording every call.
type fakeAPI struct {
	mu sync.Mutex

	mergeCalls int
	mergeErr   error
	newSpotID  string

	addCalls  int
	failAddAt int // 1-based add-photo call that fails, 0 = never

	deletedPhotos  []string
	deletePhotoErr error
	deletedSpots   []string
	deleteSpotErr  error

	// optional observation hooks, invoked at the start of each call
	onMergeSpot   func()
	onAddPhoto    func()
	onDeletePhoto func()
	onDeleteSpot  func()
}

func (f *fakeAPI) MergeSpot(_ context.Context, req api.MergeSpotRequest) (string, error) {
	if f.onMergeSpot != nil {
		f.onMergeSpot()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	if f.mergeErr != nil {
		return "", f.mergeErr
	}
	if req.SpotID != "" {
		return req.SpotID, nil
	}
	return f.newSpotID, nil
}

func (f *fakeAPI) AddPhoto(_ context.Context, req api.AddPhotoRequest) (*api.UploadedPhoto, error) {
	if f.onAddPhoto != nil {
		f.onAddPhoto()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.failAddAt != 0 && f.addCalls == f.failAddAt {
		return nil, fmt.Errorf("%w: injected", common.ErrMetadataRegistration)
	}
	return &api.UploadedPhoto{
		ID:          uuid.NewString(),
		StoragePath: req.StoragePath,
		PublicURL:   req.PublicURL,
		IsCover:     req.SetAsCover,
	}, nil
}

func (f *fakeAPI) DeletePhoto(_ context.Context, photoID string) (string, error) {
	if f.onDeletePhoto != nil {
		f.onDeletePhoto()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deletePhotoErr != nil {
		return "", f.deletePhotoErr
	}
	f.deletedPhotos = append(f.deletedPhotos, photoID)
	return "path", nil
}

func (f *fakeAPI) DeleteSpot(_ context.Context, spotID string) error {
	if f.onDeleteSpot != nil {
		f.onDeleteSpot()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteSpotErr != nil {
		return f.deleteSpotErr
	}
	f.deletedSpots = append(f.deletedSpots, spotID)
	return nil
}

func (f *fakeAPI) DeleteRating(_ context.Context, _ string) error { return nil }

func validForm() Form {
	return Form{
		ListID:   "list-1",
		Name:     "Corner Cafe",
		Category: "cafe",
		Score:    4.5,
		Criteria: map[string]float64{"taste": 5},
	}
}

type fixture struct {
	api    *fakeAPI
	store  *storage.MemStore
	drafts *drafts.MemStore
	orch   *Orchestrator
	batch  *batch.Batch
}

func newFixture(t *testing.T, client *fakeAPI, photoCount int) *fixture {
	t.Helper()
	store := storage.NewMemStore()
	draftStore := drafts.NewMemStore()
	log := testLogger()
	coord := upload.NewCoordinator(upload.NewUploader(store, client, log), log)

	b := batch.New()
	for i := 0; i < photoCount; i++ {
		_, err := b.Add(fmt.Sprintf("p%d.jpg", i), "image/jpeg", testJPEG(t), nil)
		require.NoError(t, err)
	}

	return &fixture{
		api:    client,
		store:  store,
		drafts: draftStore,
		orch:   NewOrchestrator(client, coord, draftStore, log),
		batch:  b,
	}
}

func TestSubmit_ValidationFailureMakesNoRemoteCall(t *testing.T) {
	fx := newFixture(t, &fakeAPI{newSpotID: "spot-1"}, 0)

	form := validForm()
	form.Name = ""

	res, err := fx.orch.Submit(context.Background(), form, fx.batch)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, StateIdle, res.State)
	assert.Zero(t, fx.api.mergeCalls)
}

func TestSubmit_MergeFailureIsTerminalWithoutCompensation(t *testing.T) {
	client := &fakeAPI{mergeErr: fmt.Errorf("%w: permission denied", common.ErrMergeRejected)}
	fx := newFixture(t, client, 2)

	res, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.ErrorIs(t, err, common.ErrMergeRejected)
	assert.Equal(t, StateMergeFailed, res.State)

	assert.Empty(t, client.deletedPhotos)
	assert.Empty(t, client.deletedSpots)
	assert.False(t, fx.batch.Submitting(), "flag dropped after the run")
}

func TestSubmit_AllSucceed(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1"}
	fx := newFixture(t, client, 3)

	key := drafts.Key("list-1", "")
	require.NoError(t, fx.drafts.Save(context.Background(), key, &drafts.Draft{ListID: "list-1"}))

	res, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.NoError(t, err)

	assert.Equal(t, StateAllDone, res.State)
	assert.Equal(t, "spot-1", res.SpotID)
	assert.Len(t, res.Photos, 3)

	assert.Equal(t, 0, fx.batch.Len(), "batch flushed after success")
	assert.Empty(t, client.deletedPhotos, "no compensation on success")
	assert.Empty(t, client.deletedSpots)

	_, err = fx.drafts.Load(context.Background(), key)
	assert.ErrorIs(t, err, common.ErrNotFound, "draft cleared on success")
}

func TestSubmit_EmptyBatchSucceeds(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1"}
	fx := newFixture(t, client, 0)

	res, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.NoError(t, err)
	assert.Equal(t, StateAllDone, res.State)
	assert.Empty(t, res.Photos)
}

func TestSubmit_CreateModeRollback(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1", failAddAt: 2}
	fx := newFixture(t, client, 3)

	res, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.ErrorIs(t, err, common.ErrMetadataRegistration)
	assert.Equal(t, StateFailed, res.State)

	// Exactly one photo made it before the failure; exactly that one is
	// compensated, and the freshly created spot is rolled back.
	assert.Len(t, client.deletedPhotos, 1)
	assert.Equal(t, []string{"spot-1"}, client.deletedSpots)

	// Entries were reset so the user can retry without re-selecting files.
	require.Equal(t, 3, fx.batch.Len())
	for _, e := range fx.batch.Entries() {
		assert.Equal(t, batch.StatusPending, e.Status)
		assert.NotEmpty(t, e.Data)
	}
	assert.False(t, fx.batch.Submitting())
}

func TestSubmit_EditModeNeverDeletesSpot(t *testing.T) {
	client := &fakeAPI{failAddAt: 1}
	fx := newFixture(t, client, 2)

	form := validForm()
	form.SpotID = "existing-spot"

	res, err := fx.orch.Submit(context.Background(), form, fx.batch)
	require.ErrorIs(t, err, common.ErrMetadataRegistration)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "existing-spot", res.SpotID)

	assert.Empty(t, client.deletedSpots, "existing spots survive photo failures")
	assert.Empty(t, client.deletedPhotos, "nothing was registered before the failure")
}

func TestSubmit_CompensationFailuresAreSwallowed(t *testing.T) {
	client := &fakeAPI{
		newSpotID:      "spot-1",
		failAddAt:      3,
		deletePhotoErr: errors.New("delete-photo down"),
		deleteSpotErr:  errors.New("delete-spot down"),
	}
	fx := newFixture(t, client, 3)

	_, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)

	// The surfaced error is the upload failure, not any cleanup failure.
	require.ErrorIs(t, err, common.ErrMetadataRegistration)
	assert.NotContains(t, err.Error(), "delete-photo down")
	assert.NotContains(t, err.Error(), "delete-spot down")
}

func TestSubmit_NoUploadedBlobsRemainAfterCreateModeFailure(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1", failAddAt: 1}
	fx := newFixture(t, client, 2)

	_, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.Error(t, err)

	// The failing unit compensated its own blob and nothing was registered,
	// so storage holds no orphans.
	assert.Equal(t, 0, fx.store.Len())
	assert.Equal(t, []string{"spot-1"}, client.deletedSpots)
}

func TestSubmit_StateProgressionOnFailure(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1", failAddAt: 2}
	fx := newFixture(t, client, 2)

	var duringMerge, duringUpload, duringCompensation State
	client.onMergeSpot = func() { duringMerge = fx.orch.State() }
	client.onAddPhoto = func() { duringUpload = fx.orch.State() }
	client.onDeletePhoto = func() { duringCompensation = fx.orch.State() }

	_, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.ErrorIs(t, err, common.ErrMetadataRegistration)

	assert.Equal(t, StateMerging, duringMerge)
	assert.Equal(t, StateUploading, duringUpload)
	assert.Equal(t, StateCompensating, duringCompensation)
	assert.Equal(t, StateFailed, fx.orch.State())
}

func TestSubmit_StateProgressionOnSuccess(t *testing.T) {
	client := &fakeAPI{newSpotID: "spot-1"}
	fx := newFixture(t, client, 1)

	var duringMerge, duringUpload State
	client.onMergeSpot = func() { duringMerge = fx.orch.State() }
	client.onAddPhoto = func() { duringUpload = fx.orch.State() }

	_, err := fx.orch.Submit(context.Background(), validForm(), fx.batch)
	require.NoError(t, err)

	assert.Equal(t, StateMerging, duringMerge)
	assert.Equal(t, StateUploading, duringUpload)
	assert.Equal(t, StateAllDone, fx.orch.State())
}
