package api

import (
	"fmt"
	"time"

	"github.com/talentops/scheduler/internal/model"
)

// slotPayload is the wire shape of one recurring slot in a desired set.
type slotPayload struct {
	Weekday     int    `json:"weekday"`
	Start       string `json:"start_time"`
	End         string `json:"end_time"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

func (p slotPayload) toModel() (model.AvailabilitySlot, error) {
	if p.Weekday < 0 || p.Weekday > 6 {
		return model.AvailabilitySlot{}, fmt.Errorf("weekday must be 0-6, got %d", p.Weekday)
	}

	start, err := model.ParseTimeOfDay(p.Start)
	if err != nil {
		return model.AvailabilitySlot{}, err
	}
	end, err := model.ParseTimeOfDay(p.End)
	if err != nil {
		return model.AvailabilitySlot{}, err
	}

	available := true
	if p.IsAvailable != nil {
		available = *p.IsAvailable
	}

	return model.AvailabilitySlot{
		Weekday:     time.Weekday(p.Weekday),
		Start:       start,
		End:         end,
		IsAvailable: available,
	}, nil
}

// saveAvailabilityRequest is the PUT /availability body: the full desired
// slot set plus the manager-level meeting duration.
type saveAvailabilityRequest struct {
	DurationMinutes int           `json:"meeting_duration_minutes"`
	Slots           []slotPayload `json:"slots"`
}

// transformRequest applies a named bulk operation to a submitted desired
// set without persisting anything. The client holds the edit state; this
// endpoint just runs the transform server-side.
type transformRequest struct {
	Operation       string        `json:"operation"` // copy_to_weekdays | copy_to_weekend | clear_day | apply_business_hours | clear_all
	SourceDay       *int          `json:"source_day,omitempty"`
	Day             *int          `json:"day,omitempty"`
	DurationMinutes int           `json:"meeting_duration_minutes"`
	Slots           []slotPayload `json:"slots"`
}

type addExceptionRequest struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Reason string `json:"reason,omitempty"`
}

type createBookingRequest struct {
	ManagerID       int64  `json:"manager_id"`
	CreatorID       int64  `json:"creator_id"`
	Date            string `json:"date"` // YYYY-MM-DD
	Start           string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func decodeSlots(payloads []slotPayload) ([]model.AvailabilitySlot, error) {
	slots := make([]model.AvailabilitySlot, 0, len(payloads))
	for i, p := range payloads {
		slot, err := p.toModel()
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
