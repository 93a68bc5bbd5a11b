// errors.go
package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errNotFound  = errors.New("not found")
	errForbidden = errors.New("forbidden")

	// submitting an attempt that already has a completion timestamp
	errAlreadySubmitted = errors.New("attempt already submitted")
)

// attemptLimitError is raised when a student starts a quiz after exhausting
// the configured attempt budget. It is a user-facing warning, not a fault.
type attemptLimitError struct {
	Max int
}

func (e *attemptLimitError) Error() string {
	return fmt.Sprintf("you have reached the maximum number of attempts (%d) for this quiz", e.Max)
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// A concurrent enroll or mark-complete loses the race at the constraint, and
// the loser is treated as a benign "already exists", not a server error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
