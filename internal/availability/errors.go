package availability

import (
	"errors"
	"fmt"

	"github.com/talentops/scheduler/internal/model"
)

// Sentinel errors, matched with errors.Is. Layers above wrap these with
// context; the HTTP layer maps them to status codes.
var (
	// ErrInvalidInterval is returned when a slot's start is not strictly
	// before its end.
	ErrInvalidInterval = errors.New("slot start must be before end")

	// ErrOverlapConflict is returned when a slot intersects another
	// available slot on the same manager and weekday.
	ErrOverlapConflict = errors.New("slot overlaps an existing slot")

	// ErrEmptySource is returned by copy operations when the source day
	// has no slots to copy.
	ErrEmptySource = errors.New("source day has no slots")

	// ErrDuplicateException is returned when a manager already has an
	// exception for the date.
	ErrDuplicateException = errors.New("exception already exists for date")

	// ErrValidationFailed is returned when reconciliation aborts before
	// writing because the desired set is inconsistent.
	ErrValidationFailed = errors.New("desired slot set failed validation")

	// ErrPersistenceFailure is returned when a storage operation fails.
	// Per the reconciliation contract nothing is partially applied.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrSlotUnavailable is returned when the requested window exists in
	// the schedule but is occupied by another booking.
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrOutsideAvailability is returned when no recurring or exception
	// window covers the requested time at all.
	ErrOutsideAvailability = errors.New("requested time is outside availability")

	// ErrPastDate is returned when the requested window is earlier than now.
	ErrPastDate = errors.New("requested time is in the past")

	// ErrDoubleBooking is returned when a concurrent booking won the
	// uniqueness race at commit time. The caller re-queries and retries.
	ErrDoubleBooking = errors.New("slot was just booked by someone else")

	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
)

// OverlapError names the slot a candidate collided with. It unwraps to
// ErrOverlapConflict so callers can match the kind without the detail.
type OverlapError struct {
	Conflicting model.AvailabilitySlot
}

func (e *OverlapError) Error() string {
	s := e.Conflicting
	return fmt.Sprintf("slot overlaps existing %s %s-%s", s.Weekday, s.Start, s.End)
}

func (e *OverlapError) Unwrap() error { return ErrOverlapConflict }
