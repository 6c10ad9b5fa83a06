package availability

import (
	"iter"
	"slices"
	"time"

	"github.com/talentops/scheduler/internal/model"
)

// SubtractBookings removes every occupied range from the availability
// windows and yields the maximal free sub-windows that remain. Only
// bookings whose status occupies time are considered; the overlap test is
// the same half-open check the validator uses.
func SubtractBookings(windows iter.Seq[model.ConcreteWindow], bookings []model.MeetingBooking) iter.Seq[model.ConcreteWindow] {
	byDate := make(map[time.Time][]model.MeetingBooking)
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		key := model.DateKey(b.Date)
		byDate[key] = append(byDate[key], b)
	}
	for _, list := range byDate {
		slices.SortFunc(list, func(a, b model.MeetingBooking) int {
			return int(a.Start) - int(b.Start)
		})
	}

	return func(yield func(model.ConcreteWindow) bool) {
		for w := range windows {
			cursor := w.Start
			for _, b := range byDate[model.DateKey(w.Date)] {
				if b.End() <= cursor || b.Start >= w.End {
					continue
				}
				if b.Start > cursor {
					free := model.ConcreteWindow{Date: w.Date, Start: cursor, End: b.Start}
					if !yield(free) {
						return
					}
				}
				if b.End() > cursor {
					cursor = b.End()
				}
			}
			if cursor < w.End {
				if !yield(model.ConcreteWindow{Date: w.Date, Start: cursor, End: w.End}) {
					return
				}
			}
		}
	}
}

// SliceWindows cuts each free window into non-overlapping increments of
// the meeting duration, starting at the window's start. A trailing
// remainder shorter than the duration is dropped.
func SliceWindows(windows iter.Seq[model.ConcreteWindow], durationMinutes int) iter.Seq[model.ConcreteWindow] {
	return func(yield func(model.ConcreteWindow) bool) {
		for w := range windows {
			for start := w.Start; start.AddMinutes(durationMinutes) <= w.End; start = start.AddMinutes(durationMinutes) {
				slice := model.ConcreteWindow{
					Date:  w.Date,
					Start: start,
					End:   start.AddMinutes(durationMinutes),
				}
				if !yield(slice) {
					return
				}
			}
		}
	}
}

// Contains reports whether any window fully covers [start, end) on the
// window's date. Used to tell "outside availability" apart from "inside
// availability but occupied".
func Contains(windows iter.Seq[model.ConcreteWindow], date time.Time, start, end model.TimeOfDay) bool {
	key := model.DateKey(date)
	for w := range windows {
		if !w.Date.Equal(key) {
			continue
		}
		if w.Start <= start && end <= w.End {
			return true
		}
	}
	return false
}
