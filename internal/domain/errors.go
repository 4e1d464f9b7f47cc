package domain

import "errors"

// Sentinel errors shared across ports and adapters. Callers use
// errors.Is to map failures onto their own taxonomy: invalid input and
// dimension mismatches are never retried, missing credentials are a
// configuration problem, and provider unavailability is transient.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrMissingCredential   = errors.New("provider credential missing")
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrEmptySegmentation marks a defect: non-empty input produced no
	// chunks. Surfaced as an internal error, never masked.
	ErrEmptySegmentation = errors.New("segmentation produced no chunks")
)
