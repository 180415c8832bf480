package batch

// MaxSpotPhotos bounds how many photo entries one spot submission may carry.
const MaxSpotPhotos = 5

// Status is the lifecycle state of a photo entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// PreviewRef is a locally scoped preview resource owned exclusively by its
// entry. It must be released when the entry is discarded, on successful
// flush, or on teardown; otherwise it leaks.
type PreviewRef interface {
	Release()
}

// Entry is one unit of user intent to attach a photo. Copies of it are
// handed out by the batch; the arena keeps the authoritative state.
type Entry struct {
	ID        string
	Filename  string
	MediaType string
	Data      []byte
	Status    Status
	Progress  int    // 0-100, monotonic non-decreasing while uploading
	Err       string // set only when Status == StatusError

	preview PreviewRef
}

// EventKind discriminates batch events.
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventProgress EventKind = "progress"
)

// Event is one observable transition of an entry. Consumers that lag may
// miss events; Entries() is the authoritative state.
type Event struct {
	EntryID  string
	Kind     EventKind
	Status   Status
	Progress int
	Err      string
}
