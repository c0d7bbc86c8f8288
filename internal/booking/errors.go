// internal/booking/errors.go
package booking

import (
	"errors"
	"fmt"

	"github.com/EvilAekt/Futsal-Booking/internal/slots"
)

// ErrCourtNotFound is returned when a booking or availability request names
// a court that does not exist.
var ErrCourtNotFound = errors.New("court not found")

// ValidationError rejects malformed input before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// OutOfHoursError rejects a well-formed span that falls outside the court's
// operating window.
type OutOfHoursError struct {
	OpenHour  int
	CloseHour int
}

func (e OutOfHoursError) Error() string {
	return fmt.Sprintf("requested time is outside operating hours %s", slots.FormatWindow(e.OpenHour, e.CloseHour))
}

// SlotUnavailableError rejects a span that overlaps an existing booking,
// carrying the first conflicting hour for the client's error message. It is
// also produced when a concurrent request wins the same slot at commit time.
type SlotUnavailableError struct {
	Hour int
}

func (e SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot at %s is already booked", slots.FormatHour(e.Hour))
}
