package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Occupies reports whether a booking in this status blocks its time window.
func (s BookingStatus) Occupies() bool {
	return s != BookingStatusCancelled
}

// MeetingBooking is a creator's reservation of a manager's time.
// Owned by the booking subsystem; the availability core reads it to compute
// free time and inserts it under the (manager, date, start) uniqueness guard.
type MeetingBooking struct {
	ID              int64         `json:"id"`
	Reference       uuid.UUID     `json:"reference"`
	ManagerID       int64         `json:"manager_id"`
	CreatorID       int64         `json:"creator_id"`
	Date            time.Time     `json:"date"` // midnight UTC
	Start           TimeOfDay     `json:"start_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// End returns the booking's end time.
func (b MeetingBooking) End() TimeOfDay {
	return b.Start.AddMinutes(b.DurationMinutes)
}
