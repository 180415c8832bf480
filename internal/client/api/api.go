// Package api defines the remote procedures the submission workflow depends
// on. Each procedure is a single atomic call on the backend; the client never
// assumes any transactional link between them.
package api

import "context"

// MergeSpotRequest carries the core record and rating of a spot. An empty
// SpotID asks the backend to create the spot; a non-empty one updates it.
// Create-vs-update is decided server-side, the client only knows whether it
// started with an existing identity.
type MergeSpotRequest struct {
	ListID        string             `json:"listId"`
	SpotID        string             `json:"spotId,omitempty"`
	Name          string             `json:"name"`
	Score         float64            `json:"score"`
	Criteria      map[string]float64 `json:"criteria"`
	Comment       string             `json:"comment,omitempty"`
	Description   string             `json:"description,omitempty"`
	Category      string             `json:"category"`
	Address       string             `json:"address,omitempty"`
	CoverPhotoURL string             `json:"coverPhotoUrl,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	Website       string             `json:"website,omitempty"`
}

// MergeSpotResponse returns the spot identity, new or existing.
type MergeSpotResponse struct {
	SpotID string `json:"spotId"`
}

// AddPhotoRequest registers metadata for an already-uploaded blob.
type AddPhotoRequest struct {
	ListID      string `json:"listId"`
	SpotID      string `json:"spotId"`
	StoragePath string `json:"storagePath"`
	PublicURL   string `json:"publicUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"sizeBytes"`
	MimeType    string `json:"mimeType"`
	SetAsCover  bool   `json:"setAsCover"`
}

// UploadedPhoto is the server-confirmed photo state. The client holds a
// read-only copy after registration succeeds.
type UploadedPhoto struct {
	ID          string `json:"id"`
	StoragePath string `json:"storagePath"`
	PublicURL   string `json:"publicUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"sizeBytes"`
	MimeType    string `json:"mimeType"`
	IsCover     bool   `json:"isCover"`
}

// DeletePhotoResponse returns the storage path of the deleted photo so the
// caller can account for blob cleanup.
type DeletePhotoResponse struct {
	StoragePath string `json:"storagePath"`
}

// Client exposes the atomic remote procedures.
type Client interface {
	// MergeSpot creates or updates a spot's core record and rating in one
	// atomic call and returns the spot id.
	MergeSpot(ctx context.Context, req MergeSpotRequest) (string, error)

	// AddPhoto registers photo metadata in one atomic call.
	AddPhoto(ctx context.Context, req AddPhotoRequest) (*UploadedPhoto, error)

	// DeletePhoto removes a photo's metadata row (the backend also removes
	// the backing blob best-effort) and returns its storage path.
	DeletePhoto(ctx context.Context, photoID string) (string, error)

	// DeleteSpot removes a spot and all its photos.
	DeleteSpot(ctx context.Context, spotID string) error

	// DeleteRating clears the rating fields of a spot.
	DeleteRating(ctx context.Context, spotID string) error
}
