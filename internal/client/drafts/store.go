// Package drafts persists abandoned spot forms so a user can resume them.
// The store is an explicit, scoped key-value interface passed into the
// submission workflow; there is no ambient global state.
package drafts

import (
	"context"
	"time"
)

// Draft is a snapshot of the spot form, written on field change and cleared
// after a successful submission.
type Draft struct {
	ListID      string             `json:"listId"`
	SpotID      string             `json:"spotId,omitempty"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Address     string             `json:"address,omitempty"`
	Description string             `json:"description,omitempty"`
	Comment     string             `json:"comment,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Website     string             `json:"website,omitempty"`
	Score       float64            `json:"score"`
	Criteria    map[string]float64 `json:"criteria,omitempty"`
	SavedAt     time.Time          `json:"savedAt"`
}

// Store is a scoped draft store keyed by caller-chosen strings.
type Store interface {
	// Save writes or replaces the draft under key.
	Save(ctx context.Context, key string, d *Draft) error

	// Load returns the draft under key, or common.ErrNotFound.
	Load(ctx context.Context, key string) (*Draft, error)

	// Clear removes the draft under key. Clearing an absent key is not an
	// error.
	Clear(ctx context.Context, key string) error
}

// Key derives the draft key for a list/spot pair; creation drafts (no spot
// id yet) share the per-list "new" slot.
func Key(listID, spotID string) string {
	if spotID == "" {
		spotID = "new"
	}
	return "draft:" + listID + ":" + spotID
}
