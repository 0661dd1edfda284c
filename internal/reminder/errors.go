package reminder

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id was never inserted.
	ErrNotFound = errors.New("reminder not found")

	// ErrDuplicateID is returned by Insert on an id collision. The caller
	// owns id generation and retries with a fresh id.
	ErrDuplicateID = errors.New("duplicate reminder id")
)

// ValidationError reports a rejected creation argument. Nothing is
// scheduled when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
