package useradmin

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("useradmin: not found")
	ErrConflict        = errors.New("useradmin: conflict")
	ErrInvalidInput    = errors.New("useradmin: invalid input")
	ErrForbidden       = errors.New("useradmin: forbidden")
	ErrUnauthenticated = errors.New("useradmin: unauthenticated")
)

// FieldError describes a single failed input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failed field so the caller can fix the
// whole request in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
