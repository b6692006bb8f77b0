package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrCoverageCheck marks a transport or protocol failure during a zone
	// lookup, as opposed to a clean "not covered" business answer.
	ErrCoverageCheck = errors.New("coverage check failed")

	// ErrSlotFetch is returned when the availability lookup fails. An empty
	// slot list is a valid success, not this error.
	ErrSlotFetch = errors.New("slot fetch failed")
)

// BookingError is returned when the reservation endpoint answers non-2xx.
// Message carries the response body so the user can see why ("slot taken").
type BookingError struct {
	StatusCode int
	Message    string
}

func (e *BookingError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("booking rejected with status %d: %s", e.StatusCode, e.Message)
}
