package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrSingularMatrix signals that a design matrix could not be inverted.
	// Callers recover by substituting a mean-only fallback model.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrInsufficientData signals that a date cannot be predicted because
	// too little usable history exists. It is a policy outcome, not a fault:
	// the orchestrator marks the date skipped and moves on.
	ErrInsufficientData = errors.New("insufficient data for regression")

	// ErrMissingWeather signals that the prediction date itself has no
	// weather observation, making its feature vector unbuildable.
	ErrMissingWeather = errors.New("missing weather observation")

	// ErrMissingLags signals that lag-1 or lag-7 revenue for the prediction
	// date is absent or zero.
	ErrMissingLags = errors.New("missing lag revenue")
)

// NewSingularMatrixError annotates a singular-matrix failure with the pivot
// position that collapsed, preserving errors.Is(err, ErrSingularMatrix).
func NewSingularMatrixError(col int, pivot float64) error {
	return fmt.Errorf("%w: pivot %e at column %d below tolerance", ErrSingularMatrix, pivot, col)
}

// NewInsufficientDataError annotates a data-scarcity skip with the counts involved.
func NewInsufficientDataError(got, need int) error {
	return fmt.Errorf("%w: %d samples, need at least %d", ErrInsufficientData, got, need)
}

// IsRecoverable reports whether an error should degrade a single date rather
// than abort the whole backfill run.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSingularMatrix) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrMissingWeather) ||
		errors.Is(err, ErrMissingLags)
}
