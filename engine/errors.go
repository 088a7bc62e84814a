package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPattern is returned when an empty pattern is submitted.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrNilRule is returned when an engine is constructed without a rule.
	ErrNilRule = errors.New("nil geometry rule")
)

// ErrDimensionMismatch is a named error type for dimension mismatch.
// It is returned before any mutation takes place.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrCategoryNotFound indicates a category index that is out of range
// or was pruned.
type ErrCategoryNotFound struct {
	Index int
}

func (e *ErrCategoryNotFound) Error() string {
	return fmt.Sprintf("category %d not found", e.Index)
}

// ErrSnapshotMismatch indicates a snapshot that was written by a
// different rule or dimensionality than the engine loading it.
type ErrSnapshotMismatch struct {
	WantRule string
	GotRule  string
	WantDim  int
	GotDim   int
}

func (e *ErrSnapshotMismatch) Error() string {
	return fmt.Sprintf("snapshot mismatch: engine %s/%d, snapshot %s/%d", e.WantRule, e.WantDim, e.GotRule, e.GotDim)
}
