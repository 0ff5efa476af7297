package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCourseNotFound means the referenced course does not exist or is deleted
var ErrCourseNotFound = errors.New("course not found")

// ErrUnauthorized means the actor lacks the role or ownership the operation
// requires
var ErrUnauthorized = errors.New("actor is not allowed to perform this action")

// InvalidTransitionError is returned for any requested status change not in
// the transition table. The course is left unmodified.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid course transition %s -> %s", e.From, e.To)
}

// ValidationFailedError carries the full error list so the caller can fix
// and retry
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	return "course validation failed: " + strings.Join(e.Errors, "; ")
}
