package models

import "time"

// Photo is one registered spot photo. The row references a blob in object
// storage by StoragePath; keeping the two consistent is the submitting
// client's job, the server only guarantees per-row atomicity.
type Photo struct {
	ID          string
	SpotID      string
	ListID      string
	StoragePath string
	PublicURL   string
	Width       int
	Height      int
	SizeBytes   int64
	MimeType    string
	IsCover     bool
	CreatedAt   time.Time
}
