// Package batch holds the in-memory set of photo entries attached to one
// spot submission. Entries live in an indexed arena keyed by a stable local
// id, with insertion order tracked separately; status transitions are applied
// through the arena only, which keeps progress callbacks and user-triggered
// removals from racing each other.
package batch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dkotelnikov/spotlist/internal/common"
	"github.com/dkotelnikov/spotlist/internal/imaging"
)

// Batch is the arena of photo entries for one submission.
//
// Membership (Add/Remove/SetCover) is gated by the submitting flag: while a
// run is in flight only status transitions are allowed.
type Batch struct {
	mu         sync.Mutex
	order      []string
	entries    map[string]*Entry
	coverID    string
	submitting bool
	events     chan Event
}

// eventBuffer covers a full run of a maximal batch: per entry one begin
// transition, up to 99 distinct progress ticks, one terminal transition and
// one reset.
const eventBuffer = MaxSpotPhotos * 102

func New() *Batch {
	return &Batch{
		entries: make(map[string]*Entry),
		events:  make(chan Event, eventBuffer),
	}
}

// Events returns the stream of entry transitions. Sends never block an
// upload: if a slow consumer falls behind the buffer, progress events are
// dropped, while status events evict the oldest queued event instead so a
// terminal transition is always delivered.
func (b *Batch) Events() <-chan Event {
	return b.events
}

// Add validates the declared media type and the slot count, then adopts the
// preview reference and inserts a pending entry, returning its id. On error
// the preview is not adopted and remains the caller's to release. The first
// entry added to an empty batch becomes the cover.
func (b *Batch) Add(filename, mediaType string, data []byte, preview PreviewRef) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.submitting {
		return "", common.ErrSubmissionInFlight
	}
	if !imaging.SupportedMediaType(mediaType) {
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedType, mediaType)
	}
	if len(b.order) >= MaxSpotPhotos {
		return "", fmt.Errorf("%w: at most %d photos", common.ErrBatchFull, MaxSpotPhotos)
	}

	id := uuid.NewString()
	b.entries[id] = &Entry{
		ID:        id,
		Filename:  filename,
		MediaType: mediaType,
		Data:      data,
		Status:    StatusPending,
		preview:   preview,
	}
	b.order = append(b.order, id)
	if b.coverID == "" {
		b.coverID = id
	}
	return id, nil
}

// Remove releases the entry's preview and drops it from the batch. If the
// removed entry was the cover, the earliest remaining entry is promoted, or
// the cover is cleared when the batch becomes empty.
func (b *Batch) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.submitting {
		return common.ErrSubmissionInFlight
	}
	e, ok := b.entries[id]
	if !ok {
		return common.ErrNotFound
	}

	if e.preview != nil {
		e.preview.Release()
	}
	delete(b.entries, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if b.coverID == id {
		b.coverID = ""
		if len(b.order) > 0 {
			b.coverID = b.order[0]
		}
	}
	return nil
}

// SetCover designates the entry as the batch cover.
func (b *Batch) SetCover(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.submitting {
		return common.ErrSubmissionInFlight
	}
	if _, ok := b.entries[id]; !ok {
		return common.ErrNotFound
	}
	b.coverID = id
	return nil
}

// Cover returns the id of the effective cover entry: the designated one if
// it still exists, else the first entry in insertion order, else "". A stale
// designation silently falls back rather than erroring.
func (b *Batch) Cover() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coverLocked()
}

func (b *Batch) coverLocked() string {
	if _, ok := b.entries[b.coverID]; ok {
		return b.coverID
	}
	if len(b.order) > 0 {
		return b.order[0]
	}
	return ""
}

// Entries returns copies of all entries in insertion order.
func (b *Batch) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.entries[id])
	}
	return out
}

// Get returns a copy of one entry.
func (b *Batch) Get(id string) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// SetSubmitting flips the flag gating membership mutation.
func (b *Batch) SetSubmitting(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitting = v
}

func (b *Batch) Submitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitting
}

// Begin transitions an entry pending -> uploading with progress reset to 0
// and returns a copy carrying the payload bytes.
func (b *Batch) Begin(id string) (Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok {
		return Entry{}, common.ErrNotFound
	}
	e.Status = StatusUploading
	e.Progress = 0
	e.Err = ""
	b.emit(Event{EntryID: id, Kind: EventStatus, Status: StatusUploading})
	return *e, nil
}

// SetProgress records upload progress for an entry. Values are clamped to
// 0-100 and never regress while uploading.
func (b *Batch) SetProgress(id string, progress int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok || e.Status != StatusUploading {
		return
	}
	if progress > 100 {
		progress = 100
	}
	if progress <= e.Progress {
		return
	}
	e.Progress = progress
	b.emit(Event{EntryID: id, Kind: EventProgress, Status: e.Status, Progress: progress})
}

// MarkSuccess transitions an entry to success with progress 100.
func (b *Batch) MarkSuccess(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok {
		return
	}
	e.Status = StatusSuccess
	e.Progress = 100
	e.Err = ""
	b.emit(Event{EntryID: id, Kind: EventStatus, Status: StatusSuccess, Progress: 100})
}

// MarkError transitions an entry to error carrying the failure message.
func (b *Batch) MarkError(id, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok {
		return
	}
	e.Status = StatusError
	e.Err = msg
	b.emit(Event{EntryID: id, Kind: EventStatus, Status: StatusError, Err: msg})
}

// ResetPending returns every entry to pending with progress 0, keeping the
// payloads so the user can retry without re-selecting files.
func (b *Batch) ResetPending() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range b.order {
		e := b.entries[id]
		e.Status = StatusPending
		e.Progress = 0
		e.Err = ""
		b.emit(Event{EntryID: id, Kind: EventStatus, Status: StatusPending})
	}
}

// Clear releases every preview and empties the batch. Used to flush entries
// after a successful submission.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
}

// Close releases all previews and closes the event stream. For teardown.
func (b *Batch) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	close(b.events)
}

func (b *Batch) clearLocked() {
	for _, e := range b.entries {
		if e.preview != nil {
			e.preview.Release()
		}
	}
	b.entries = make(map[string]*Entry)
	b.order = nil
	b.coverID = ""
}

// emit delivers ev without blocking; the caller holds the batch lock, so it
// is the only producer. Progress events may drop under backpressure. Status
// events make room by evicting the oldest queued event, which bounds the
// retry at one eviction per send.
func (b *Batch) emit(ev Event) {
	for {
		select {
		case b.events <- ev:
			return
		default:
		}
		if ev.Kind != EventStatus {
			return
		}
		select {
		case <-b.events:
		default:
		}
	}
}
