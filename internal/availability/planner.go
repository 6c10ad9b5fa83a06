package availability

import (
	"fmt"
	"slices"
	"time"

	"github.com/talentops/scheduler/internal/model"
)

// Weekday groups used by the bulk operations.
var (
	weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	weekend  = []time.Weekday{time.Saturday, time.Sunday}
)

// Business-hours preset applied by ApplyBusinessHours.
var (
	businessHoursStart = model.MustTimeOfDay("09:00")
	businessHoursEnd   = model.MustTimeOfDay("17:00")
)

// Planner holds a manager's desired slot set during an editing session.
// Edits mutate only this in-memory state; nothing touches storage until
// the reconciler is handed the result of Slots(). Every mutation leaves
// the set valid or returns an error and changes nothing.
type Planner struct {
	managerID       int64
	durationMinutes int
	slots           []model.AvailabilitySlot
}

// NewPlanner starts an editing session from the manager's persisted slots.
// The slots must already be internally consistent; loading an inconsistent
// set fails rather than letting a later save silently repair it.
func NewPlanner(managerID int64, durationMinutes int, slots []model.AvailabilitySlot) (*Planner, error) {
	if err := ValidateSet(slots); err != nil {
		return nil, fmt.Errorf("load planner: %w", err)
	}

	p := &Planner{
		managerID:       managerID,
		durationMinutes: durationMinutes,
		slots:           slices.Clone(slots),
	}
	p.sort()
	return p, nil
}

// Slots returns a copy of the desired set, ordered by weekday then start.
func (p *Planner) Slots() []model.AvailabilitySlot {
	return slices.Clone(p.slots)
}

// DurationMinutes returns the meeting duration carried by this session.
func (p *Planner) DurationMinutes() int { return p.durationMinutes }

// SetDuration updates the manager-level meeting duration.
func (p *Planner) SetDuration(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("meeting duration must be positive: %w", ErrInvalidInterval)
	}
	p.durationMinutes = minutes
	return nil
}

// Add validates a new slot against the current set and inserts it.
func (p *Planner) Add(weekday time.Weekday, start, end model.TimeOfDay) error {
	candidate := model.AvailabilitySlot{
		ManagerID:              p.managerID,
		Weekday:                weekday,
		Start:                  start,
		End:                    end,
		IsAvailable:            true,
		MeetingDurationMinutes: p.durationMinutes,
	}

	if err := Validate(candidate, p.slots); err != nil {
		return err
	}

	p.slots = append(p.slots, candidate)
	p.sort()
	return nil
}

// ClearDay removes every slot on the given weekday.
func (p *Planner) ClearDay(day time.Weekday) {
	p.slots = slices.DeleteFunc(p.slots, func(s model.AvailabilitySlot) bool {
		return s.Weekday == day
	})
}

// ClearAll empties the desired set entirely.
func (p *Planner) ClearAll() {
	p.slots = nil
}

// CopyToWeekdays replicates the source day's slots onto Monday-Friday,
// replacing whatever each target day held. The source day itself is left
// untouched. Applying it twice yields the same result as once.
func (p *Planner) CopyToWeekdays(source time.Weekday) error {
	return p.copyTo(source, weekdays)
}

// CopyToWeekend replicates the source day's slots onto Saturday and Sunday
// with the same replacement semantics.
func (p *Planner) CopyToWeekend(source time.Weekday) error {
	return p.copyTo(source, weekend)
}

func (p *Planner) copyTo(source time.Weekday, targets []time.Weekday) error {
	template := p.daySlots(source)
	if len(template) == 0 {
		return ErrEmptySource
	}

	next := slices.DeleteFunc(slices.Clone(p.slots), func(s model.AvailabilitySlot) bool {
		return s.Weekday != source && slices.Contains(targets, s.Weekday)
	})

	for _, day := range targets {
		if day == source {
			continue
		}
		for _, s := range template {
			copied := s
			copied.ID = 0
			copied.Weekday = day
			next = append(next, copied)
		}
	}

	if err := ValidateSet(next); err != nil {
		return err
	}

	p.slots = next
	p.sort()
	return nil
}

// ApplyBusinessHours replaces all Monday-Friday slots with a single
// 09:00-17:00 slot per weekday. Weekend slots are untouched.
func (p *Planner) ApplyBusinessHours() {
	next := slices.DeleteFunc(slices.Clone(p.slots), func(s model.AvailabilitySlot) bool {
		return slices.Contains(weekdays, s.Weekday)
	})

	for _, day := range weekdays {
		next = append(next, model.AvailabilitySlot{
			ManagerID:              p.managerID,
			Weekday:                day,
			Start:                  businessHoursStart,
			End:                    businessHoursEnd,
			IsAvailable:            true,
			MeetingDurationMinutes: p.durationMinutes,
		})
	}

	p.slots = next
	p.sort()
}

func (p *Planner) daySlots(day time.Weekday) []model.AvailabilitySlot {
	var out []model.AvailabilitySlot
	for _, s := range p.slots {
		if s.Weekday == day {
			out = append(out, s)
		}
	}
	return out
}

func (p *Planner) sort() {
	slices.SortFunc(p.slots, func(a, b model.AvailabilitySlot) int {
		if a.Weekday != b.Weekday {
			return int(a.Weekday) - int(b.Weekday)
		}
		return int(a.Start) - int(b.Start)
	})
}
