package model

import "time"

// AvailabilitySlot is a manager's recurring weekly availability window.
// Persisted with a uniqueness constraint on (manager_id, weekday) for
// recurring rows, so a save replaces a day's window rather than appending.
type AvailabilitySlot struct {
	ID                     int64        `json:"id"`
	ManagerID              int64        `json:"manager_id"`
	Weekday                time.Weekday `json:"weekday"` // 0 = Sunday, 6 = Saturday
	Start                  TimeOfDay    `json:"start_time"`
	End                    TimeOfDay    `json:"end_time"`
	IsAvailable            bool         `json:"is_available"`
	MeetingDurationMinutes int          `json:"meeting_duration_minutes"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// Overlaps reports whether the half-open intervals [Start,End) of two
// slots intersect. Day-of-week is not considered here.
func (s AvailabilitySlot) Overlaps(other AvailabilitySlot) bool {
	return s.Start < other.End && s.End > other.Start
}

// DateException blocks a specific calendar date for a manager, overriding
// whatever the recurring schedule would make available that day.
type DateException struct {
	ID        int64     `json:"id"`
	ManagerID int64     `json:"manager_id"`
	Date      time.Time `json:"date"` // midnight UTC
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConcreteWindow is a recurring slot expanded onto a specific date.
type ConcreteWindow struct {
	Date  time.Time `json:"date"`
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// DateKey normalizes a timestamp to midnight UTC so dates compare by value.
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
