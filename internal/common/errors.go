// Package common defines shared sentinel errors used across the client and
// server layers of spotlist. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Normalization errors. Per-entry: the user recovers by removing or
	// replacing the offending file.
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrFileTooLarge    = errors.New("image too large after compression")

	// Transport errors. Per-step: these trigger the compensation paths of
	// the upload unit and the submission orchestrator.
	ErrStorageUpload        = errors.New("storage upload failed")
	ErrURLResolution        = errors.New("public url resolution failed")
	ErrMetadataRegistration = errors.New("photo registration rejected")
	ErrMergeRejected        = errors.New("spot merge rejected")

	// Local validation errors. Never reach the network.
	ErrValidation = errors.New("validation failed")

	// Batch membership errors.
	ErrBatchFull          = errors.New("photo limit reached")
	ErrSubmissionInFlight = errors.New("submission in flight")
)
