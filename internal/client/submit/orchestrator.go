// Package submit runs the top-level submission saga: merge the spot record,
// upload the photo batch, and on any post-merge failure compensate every
// side effect the run has produced. The backend offers single-call atomic
// procedures but no cross-resource transactions, so the saga's compensating
// actions are the only consistency mechanism.
package submit

import (
	"context"
	"sync"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/client/batch"
	"github.com/dkotelnikov/spotlist/internal/client/drafts"
	"github.com/dkotelnikov/spotlist/internal/client/upload"
	"github.com/dkotelnikov/spotlist/internal/logging"
)

// State is the orchestrator's position in the submission state machine.
type State string

const (
	StateIdle         State = "idle"
	StateMerging      State = "merging"
	StateMergeFailed  State = "merge_failed" // terminal, no compensation
	StateUploading    State = "uploading_photos"
	StateCompensating State = "compensating"
	StateAllDone      State = "all_done" // terminal
	StateFailed       State = "failed"   // terminal, after compensation
)

// Result reports where a submission ended up.
type Result struct {
	State  State
	SpotID string
	Photos []api.UploadedPhoto
}

// Orchestrator drives one submission at a time. It owns the decision to
// roll back: uploaded photos are compensated on any upload failure, and the
// spot record itself is deleted only when this submission created it.
type Orchestrator struct {
	api    api.Client
	coord  *upload.Coordinator
	drafts drafts.Store
	log    logging.Logger

	mu    sync.Mutex
	state State
}

func NewOrchestrator(client api.Client, coord *upload.Coordinator, draftStore drafts.Store, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		api:    client,
		coord:  coord,
		drafts: draftStore,
		log:    log.With("module", "submit"),
		state:  StateIdle,
	}
}

// State reports the phase the current submission is in, or the terminal
// state of the last one. Safe to read while Submit runs.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Submit validates the form, merges the spot record, then uploads the photo
// batch for the resulting spot id.
//
// Failure handling follows the state machine:
//   - validation failure: no remote call was made; Result.State is Idle.
//   - merge failure: terminal, nothing has happened yet, no compensation.
//   - upload failure: every photo registered in this run is deleted (in
//     parallel, they are independent), the spot is deleted iff this
//     submission created it, and the remaining entries are reset to pending
//     so a retry needs no re-selection. Compensation sub-failures are logged
//     and swallowed; the user-visible error stays the upload error.
//
// On success the batch is flushed (previews released) and the draft cleared.
func (o *Orchestrator) Submit(ctx context.Context, form Form, b *batch.Batch) (*Result, error) {
	if err := form.Validate(); err != nil {
		o.setState(StateIdle)
		return &Result{State: StateIdle}, err
	}

	b.SetSubmitting(true)
	defer b.SetSubmitting(false)

	o.setState(StateMerging)
	o.log.Info(ctx, "merging spot", "list", form.ListID, "spot", form.SpotID)
	spotID, err := o.api.MergeSpot(ctx, form.mergeRequest())
	if err != nil {
		o.setState(StateMergeFailed)
		return &Result{State: StateMergeFailed}, err
	}
	createdSpot := form.SpotID == ""

	o.setState(StateUploading)
	photos, uploadedIDs, err := o.coord.Run(ctx, form.ListID, spotID, b)
	if err != nil {
		o.log.Warn(ctx, "upload failed, compensating",
			"spot", spotID, "uploaded", len(uploadedIDs), "error", err)
		o.setState(StateCompensating)
		o.compensate(ctx, spotID, createdSpot, uploadedIDs, b)
		o.setState(StateFailed)
		return &Result{State: StateFailed, SpotID: spotID}, err
	}

	b.Clear()
	if err := o.drafts.Clear(ctx, drafts.Key(form.ListID, form.SpotID)); err != nil {
		o.log.Warn(ctx, "clearing draft failed", "error", err)
	}

	o.setState(StateAllDone)
	o.log.Info(ctx, "submission complete", "spot", spotID, "photos", len(photos))
	return &Result{State: StateAllDone, SpotID: spotID, Photos: photos}, nil
}

// compensate unwinds a failed run. Order matters: photo rows first (each
// delete also removes its blob), then the spot itself when this run created
// it, then the local batch reset. Nothing here may fail the submission
// further, so every error is logged and dropped.
func (o *Orchestrator) compensate(ctx context.Context, spotID string, createdSpot bool, uploadedIDs []string, b *batch.Batch) {
	var wg sync.WaitGroup
	for _, photoID := range uploadedIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := o.api.DeletePhoto(ctx, id); err != nil {
				o.log.Error(ctx, "compensating photo delete failed", "photo", id, "error", err)
			}
		}(photoID)
	}
	wg.Wait()

	if createdSpot {
		if err := o.api.DeleteSpot(ctx, spotID); err != nil {
			o.log.Error(ctx, "compensating spot delete failed", "spot", spotID, "error", err)
		}
	}

	b.ResetPending()
}
