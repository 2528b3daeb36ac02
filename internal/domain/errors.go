package domain

import (
	"errors"
	"strings"
)

// ErrValidation is the sentinel all field validation failures wrap,
// so callers can branch on errors.Is without inspecting messages.
var ErrValidation = errors.New("validation failed")

// ValidationError collects human-readable field problems for one entity.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
