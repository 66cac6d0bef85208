// Package confidence holds the detection threshold setting: a single scalar
// in the open interval (0,1) passed to the recognition service with every
// image.
package confidence

import (
	"context"
	"fmt"
)

// Default is used when no value has ever been persisted.
const Default = 0.5

// ValidationError reports a threshold outside the open interval (0,1).
type ValidationError struct {
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("confidence must be strictly between 0 and 1, got %v", e.Value)
}

// Validate rejects values outside (0,1). The bounds themselves are invalid:
// 0 would accept every candidate box, 1 would reject all of them.
func Validate(v float64) error {
	if v <= 0 || v >= 1 {
		return &ValidationError{Value: v}
	}
	return nil
}

// Store persists the threshold across sessions with last-writer-wins
// semantics. Implemented by storage.Store; faked in tests.
type Store interface {
	// GetConfidence returns the persisted threshold, or Default if none
	// has been saved yet.
	GetConfidence(ctx context.Context) (float64, error)
	// SetConfidence validates and persists a new threshold. Returns a
	// *ValidationError and leaves the stored value untouched when v is
	// out of range.
	SetConfidence(ctx context.Context, v float64) error
}
