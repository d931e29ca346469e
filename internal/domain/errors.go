package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an application, event, position, block or
// member id does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotPending is returned by Select when the application already left the
// pending state.
var ErrNotPending = errors.New("application is not pending")

// ErrEventNotOpen is returned by Submit when the event is not accepting
// applications.
var ErrEventNotOpen = errors.New("event is not open for applications")

// ErrInsufficientRating is returned by Submit when the member's rating is
// below the position's minimum.
var ErrInsufficientRating = errors.New("rating below position minimum")

// DoubleBookingError is returned by Select when the member already holds an
// exclusive slot for the same time block on another position. Selection is
// refused outright; no state changes.
type DoubleBookingError struct {
	Callsign string
}

func (e *DoubleBookingError) Error() string {
	return fmt.Sprintf("member already booked for %s in this block", e.Callsign)
}
