package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func collect(windows func(func(model.ConcreteWindow) bool)) []model.ConcreteWindow {
	var out []model.ConcreteWindow
	for w := range windows {
		out = append(out, w)
	}
	return out
}

func TestExpandSingleWeek(t *testing.T) {
	slots := []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "12:00"),
		slot(1, time.Wednesday, "14:00", "16:00"),
	}

	// 2026-08-03 is a Monday.
	from := date(2026, time.August, 3)
	to := date(2026, time.August, 9)

	windows := collect(availability.Expand(slots, from, to))
	require.Len(t, windows, 2)

	assert.Equal(t, date(2026, time.August, 3), windows[0].Date)
	assert.Equal(t, model.MustTimeOfDay("09:00"), windows[0].Start)
	assert.Equal(t, model.MustTimeOfDay("12:00"), windows[0].End)

	assert.Equal(t, date(2026, time.August, 5), windows[1].Date)
	assert.Equal(t, model.MustTimeOfDay("14:00"), windows[1].Start)
}

func TestExpandMultipleSlotsPerDayOrdered(t *testing.T) {
	slots := []model.AvailabilitySlot{
		slot(1, time.Monday, "13:00", "17:00"),
		slot(1, time.Monday, "09:00", "12:00"),
	}

	day := date(2026, time.August, 3)
	windows := collect(availability.Expand(slots, day, day))
	require.Len(t, windows, 2)
	assert.Equal(t, model.MustTimeOfDay("09:00"), windows[0].Start)
	assert.Equal(t, model.MustTimeOfDay("13:00"), windows[1].Start)
}

func TestExpandSkipsUnavailable(t *testing.T) {
	blocked := slot(1, time.Monday, "09:00", "12:00")
	blocked.IsAvailable = false

	day := date(2026, time.August, 3)
	windows := collect(availability.Expand([]model.AvailabilitySlot{blocked}, day, day))
	assert.Empty(t, windows)
}

func TestExpandLongHorizonCount(t *testing.T) {
	slots := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "10:00")}

	from := date(2026, time.August, 3) // Monday
	to := from.AddDate(0, 0, 7*8-1)    // eight full weeks

	windows := collect(availability.Expand(slots, from, to))
	assert.Len(t, windows, 8)
}

func TestExpandIsRestartable(t *testing.T) {
	slots := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "10:00")}
	seq := availability.Expand(slots, date(2026, time.August, 3), date(2026, time.August, 17))

	first := collect(seq)
	second := collect(seq)
	assert.Equal(t, first, second)
}

func TestExpandStopsEarlyWhenConsumerBreaks(t *testing.T) {
	slots := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "10:00")}
	seq := availability.Expand(slots, date(2026, time.August, 3), date(2026, time.December, 31))

	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestApplyExceptionsRemovesBlockedDates(t *testing.T) {
	slots := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "12:00")}
	from := date(2026, time.August, 3)
	to := date(2026, time.August, 17) // three Mondays

	exceptions := []model.DateException{
		{ManagerID: 1, Date: date(2026, time.August, 10), Reason: "offsite"},
	}

	windows := collect(availability.ApplyExceptions(availability.Expand(slots, from, to), exceptions))
	require.Len(t, windows, 2)
	assert.Equal(t, date(2026, time.August, 3), windows[0].Date)
	assert.Equal(t, date(2026, time.August, 17), windows[1].Date)
}

func TestApplyExceptionsPrecedence(t *testing.T) {
	// A date covered by both a recurring slot and a full-day exception
	// yields zero windows.
	slots := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "17:00")}
	day := date(2026, time.August, 3)

	exceptions := []model.DateException{{ManagerID: 1, Date: day}}

	windows := collect(availability.ApplyExceptions(availability.Expand(slots, day, day), exceptions))
	assert.Empty(t, windows)
}
