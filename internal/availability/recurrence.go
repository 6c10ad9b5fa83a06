package availability

import (
	"iter"
	"time"

	"github.com/talentops/scheduler/internal/model"
)

// Expand turns recurring weekly slots into concrete date windows over
// [from, to] inclusive. The sequence is lazy and restartable; it is finite
// because the range is, but the caller is responsible for bounding the
// horizon (the booking UI caps it at the configured number of days).
//
// Slots marked unavailable are skipped. Windows for a given date are
// emitted in start-time order.
func Expand(slots []model.AvailabilitySlot, from, to time.Time) iter.Seq[model.ConcreteWindow] {
	byWeekday := slotsByWeekday(slots)
	start := model.DateKey(from)
	end := model.DateKey(to)

	return func(yield func(model.ConcreteWindow) bool) {
		for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
			for _, s := range byWeekday[date.Weekday()] {
				w := model.ConcreteWindow{Date: date, Start: s.Start, End: s.End}
				if !yield(w) {
					return
				}
			}
		}
	}
}

// ApplyExceptions filters out every window whose date is blocked by a
// full-day exception. Exceptions always win over recurring availability.
func ApplyExceptions(windows iter.Seq[model.ConcreteWindow], exceptions []model.DateException) iter.Seq[model.ConcreteWindow] {
	blocked := make(map[time.Time]struct{}, len(exceptions))
	for _, e := range exceptions {
		blocked[model.DateKey(e.Date)] = struct{}{}
	}

	return func(yield func(model.ConcreteWindow) bool) {
		for w := range windows {
			if _, ok := blocked[model.DateKey(w.Date)]; ok {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

func slotsByWeekday(slots []model.AvailabilitySlot) map[time.Weekday][]model.AvailabilitySlot {
	byWeekday := make(map[time.Weekday][]model.AvailabilitySlot)
	for _, s := range slots {
		if !s.IsAvailable {
			continue
		}
		byWeekday[s.Weekday] = insertByStart(byWeekday[s.Weekday], s)
	}
	return byWeekday
}

// insertByStart keeps a weekday's slot list ordered by start time.
func insertByStart(list []model.AvailabilitySlot, s model.AvailabilitySlot) []model.AvailabilitySlot {
	pos := len(list)
	for i, cur := range list {
		if s.Start < cur.Start {
			pos = i
			break
		}
	}
	list = append(list, model.AvailabilitySlot{})
	copy(list[pos+1:], list[pos:])
	list[pos] = s
	return list
}
