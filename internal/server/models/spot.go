// Package models defines the server-side row types.
package models

import "time"

// Spot is the rated entity. Score and Criteria form the rating; both live
// on the spot row so the merge procedure can write the whole record in one
// atomic statement.
type Spot struct {
	ID            string
	ListID        string // immutable once created
	Name          string
	Address       string
	Category      string
	Description   string
	Comment       string
	Phone         string
	Website       string
	Score         float64
	Criteria      map[string]float64
	CoverPhotoURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
