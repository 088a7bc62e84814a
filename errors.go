package art

import (
	"errors"
	"fmt"

	"github.com/hellblazer/art/engine"
)

var (
	// ErrEmptyPattern is returned when an empty pattern is submitted.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrCategoryNotFound is returned when a category index is out of
	// range or was pruned.
	ErrCategoryNotFound = errors.New("category not found")
)

// ErrDimensionMismatch indicates a pattern dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// translateError normalizes engine-layer errors into the package's
// public error contract.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *engine.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var cnf *engine.ErrCategoryNotFound
	if errors.As(err, &cnf) {
		return fmt.Errorf("%w: %w", ErrCategoryNotFound, err)
	}
	if errors.Is(err, engine.ErrEmptyPattern) {
		return fmt.Errorf("%w: %w", ErrEmptyPattern, err)
	}

	return err
}
