package domain

import (
	"errors"
	"fmt"
)

// ErrModelNotFound means no persisted model exists for the product yet.
var ErrModelNotFound = errors.New("model not found")

// ModelLoadError wraps a deserialization failure of a persisted model.
// It is surfaced as a structured error payload, never as a fatal failure:
// callers fall back to the heuristic forecast.
type ModelLoadError struct {
	ProductID int
	Err       error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load failed for product %d: %v", e.ProductID, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }
