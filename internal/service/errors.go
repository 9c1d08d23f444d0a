package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/headless-pm/progress-tracker/internal/database"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrAllClaimed = errors.New("all requested subtasks are already claimed")

	// ErrClaimConflict means a concurrent writer kept winning the same slots
	// until the retry budget ran out.
	ErrClaimConflict = errors.New("claim conflict")
)

// AllClaimedError carries the keys that were rejected when nothing in a claim
// request was still free.
type AllClaimedError struct {
	Rejected []string
}

func (e *AllClaimedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAllClaimed, strings.Join(e.Rejected, ", "))
}

func (e *AllClaimedError) Unwrap() error {
	return ErrAllClaimed
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// lookupError turns a store miss into ErrNotFound and wraps anything else.
func lookupError(kind string, id uint, err error) error {
	if database.IsNotFound(err) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", kind, id, err)
}
