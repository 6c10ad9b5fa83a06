package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
	"github.com/talentops/scheduler/internal/store"
)

func slot(manager int64, day time.Weekday, start, end string) model.AvailabilitySlot {
	return model.AvailabilitySlot{
		ManagerID:   manager,
		Weekday:     day,
		Start:       model.MustTimeOfDay(start),
		End:         model.MustTimeOfDay(end),
		IsAvailable: true,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newAvailabilityService() (*AvailabilityService, *store.Memory) {
	mem := store.NewMemory()
	return NewAvailabilityService(mem, zap.NewNop()), mem
}

func weekdaysOf(slots []model.AvailabilitySlot) []time.Weekday {
	var days []time.Weekday
	for _, s := range slots {
		days = append(days, s.Weekday)
	}
	return days
}

func TestReconcileReplacementSemantics(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, 1, 60, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "17:00"),
		slot(1, time.Wednesday, "09:00", "17:00"),
		slot(1, time.Friday, "09:00", "17:00"),
	})
	require.NoError(t, err)

	// Saving only Tuesday and Thursday removes the Mon/Wed/Fri rows.
	result, err := svc.Reconcile(ctx, 1, 60, []model.AvailabilitySlot{
		slot(1, time.Tuesday, "10:00", "16:00"),
		slot(1, time.Thursday, "10:00", "16:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 3, result.Deleted)

	schedule, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []time.Weekday{time.Tuesday, time.Thursday}, weekdaysOf(schedule.Slots))
}

func TestReconcileNonOverlapInvariant(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, 1, 30, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "12:00"),
		slot(1, time.Tuesday, "13:00", "17:00"),
	})
	require.NoError(t, err)

	schedule, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	assert.NoError(t, availability.ValidateSet(schedule.Slots))
}

func TestReconcileValidationAbortsBeforeWrite(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, 1, 60, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "12:00"),
	})
	require.NoError(t, err)

	_, err = svc.Reconcile(ctx, 1, 60, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "12:00"),
		slot(1, time.Monday, "11:00", "14:00"),
	})
	require.ErrorIs(t, err, availability.ErrValidationFailed)
	require.ErrorIs(t, err, availability.ErrOverlapConflict)

	// Nothing was persisted by the failed save.
	schedule, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 1)
	assert.Equal(t, model.MustTimeOfDay("12:00"), schedule.Slots[0].End)
}

func TestReconcilePersistenceFailure(t *testing.T) {
	svc, mem := newAvailabilityService()
	mem.ReplaceErr = errors.New("connection reset")

	_, err := svc.Reconcile(context.Background(), 1, 60, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "12:00"),
	})
	assert.ErrorIs(t, err, availability.ErrPersistenceFailure)
}

func TestReconcileStampsManagerAndDuration(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	// The payload claims another manager; the caller-supplied identity wins.
	foreign := slot(99, time.Monday, "09:00", "12:00")
	_, err := svc.Reconcile(ctx, 1, 45, []model.AvailabilitySlot{foreign})
	require.NoError(t, err)

	schedule, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 1)
	assert.Equal(t, int64(1), schedule.Slots[0].ManagerID)
	assert.Equal(t, 45, schedule.Slots[0].MeetingDurationMinutes)
	assert.Equal(t, 45, schedule.DurationMinutes)
}

func TestBusinessHoursScenario(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	// Prior state: Monday morning plus a Saturday slot.
	_, err := svc.Reconcile(ctx, 1, 60, []model.AvailabilitySlot{
		slot(1, time.Monday, "09:00", "17:00"),
		slot(1, time.Saturday, "10:00", "12:00"),
	})
	require.NoError(t, err)

	// Editing session: load, apply business hours, save the full set.
	schedule, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)

	planner, err := availability.NewPlanner(1, schedule.DurationMinutes, schedule.Slots)
	require.NoError(t, err)
	planner.ApplyBusinessHours()

	desired := planner.Slots()
	require.Len(t, desired, 6)

	_, err = svc.Reconcile(ctx, 1, planner.DurationMinutes(), desired)
	require.NoError(t, err)

	saved, err := svc.Schedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved.Slots, 6)

	byDay := make(map[time.Weekday]model.AvailabilitySlot)
	for _, s := range saved.Slots {
		byDay[s.Weekday] = s
	}
	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		require.Contains(t, byDay, day)
		assert.Equal(t, model.MustTimeOfDay("09:00"), byDay[day].Start)
		assert.Equal(t, model.MustTimeOfDay("17:00"), byDay[day].End)
	}

	// The Saturday slot survived the save.
	require.Contains(t, byDay, time.Saturday)
	assert.Equal(t, model.MustTimeOfDay("10:00"), byDay[time.Saturday].Start)
	assert.Equal(t, model.MustTimeOfDay("12:00"), byDay[time.Saturday].End)
}

func TestScheduleDefaultsDuration(t *testing.T) {
	svc, _ := newAvailabilityService()

	schedule, err := svc.Schedule(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, DefaultMeetingDuration, schedule.DurationMinutes)
	assert.Empty(t, schedule.Slots)
}

func TestExceptionLifecycle(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()
	day := date(2026, time.August, 10)

	e, err := svc.AddException(ctx, 1, day, "vacation")
	require.NoError(t, err)
	assert.Equal(t, day, e.Date)

	// Duplicate is rejected, not layered.
	_, err = svc.AddException(ctx, 1, day, "again")
	assert.ErrorIs(t, err, availability.ErrDuplicateException)

	list, err := svc.Exceptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "vacation", list[0].Reason)

	require.NoError(t, svc.RemoveException(ctx, 1, day))
	assert.ErrorIs(t, svc.RemoveException(ctx, 1, day), availability.ErrNotFound)
}

func TestAddExceptionRequiresDate(t *testing.T) {
	svc, _ := newAvailabilityService()

	_, err := svc.AddException(context.Background(), 1, time.Time{}, "")
	assert.ErrorIs(t, err, availability.ErrValidationFailed)
}

func TestPurgeExpiredExceptions(t *testing.T) {
	svc, _ := newAvailabilityService()
	ctx := context.Background()

	past := date(2020, time.January, 6)
	future := model.DateKey(time.Now().UTC().AddDate(0, 0, 30))

	_, err := svc.AddException(ctx, 1, past, "old")
	require.NoError(t, err)
	_, err = svc.AddException(ctx, 1, future, "upcoming")
	require.NoError(t, err)

	purged, err := svc.PurgeExpiredExceptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	remaining, err := svc.Exceptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, future, remaining[0].Date)
}
