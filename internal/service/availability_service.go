package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
)

// DefaultMeetingDuration is used for managers who have never saved a
// schedule.
const DefaultMeetingDuration = 30

// ManagerSchedule is everything the editing UI needs to seed a session:
// the persisted recurring slots, the manager-level meeting duration and
// the date exceptions.
type ManagerSchedule struct {
	Slots           []model.AvailabilitySlot `json:"slots"`
	DurationMinutes int                      `json:"meeting_duration_minutes"`
	Exceptions      []model.DateException    `json:"exceptions"`
}

// ReconcileResult reports what a save actually changed.
type ReconcileResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
}

// AvailabilityService owns the manager-facing schedule operations:
// loading a schedule, reconciling a desired slot set into storage and
// managing date exceptions.
type AvailabilityService struct {
	store  AvailabilityStore
	logger *zap.Logger
}

func NewAvailabilityService(store AvailabilityStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		logger: logger,
	}
}

// Schedule loads the manager's persisted availability.
func (s *AvailabilityService) Schedule(ctx context.Context, managerID int64) (*ManagerSchedule, error) {
	slots, err := s.store.RecurringSlots(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("load recurring slots: %w", err)
	}

	duration, err := s.store.MeetingDuration(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("load meeting duration: %w", err)
	}
	if duration == 0 {
		duration = DefaultMeetingDuration
	}

	exceptions, err := s.store.Exceptions(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("load exceptions: %w", err)
	}

	return &ManagerSchedule{
		Slots:           slots,
		DurationMinutes: duration,
		Exceptions:      exceptions,
	}, nil
}

// Reconcile persists a desired slot set for the manager. The whole set is
// validated first; an inconsistent set aborts with ErrValidationFailed
// before storage is touched. The write itself is delegated to the store
// as one atomic replacement: days absent from the desired set lose their
// rows, days present are upserted keyed by (manager, weekday). A day's
// slots are an atomic replacement unit, so a crash mid-save can never
// leave a partial day behind.
func (s *AvailabilityService) Reconcile(ctx context.Context, managerID int64, durationMinutes int, desired []model.AvailabilitySlot) (*ReconcileResult, error) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultMeetingDuration
	}

	// Stamp ownership and the manager-level duration onto every row; the
	// caller-supplied manager identity is trusted per the auth boundary.
	stamped := make([]model.AvailabilitySlot, len(desired))
	for i, slot := range desired {
		slot.ManagerID = managerID
		slot.MeetingDurationMinutes = durationMinutes
		stamped[i] = slot
	}

	if err := availability.ValidateSet(stamped); err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrValidationFailed, err)
	}

	inserted, updated, deleted, err := s.store.ReplaceRecurring(ctx, managerID, stamped)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrPersistenceFailure, err)
	}

	s.logger.Info("Availability reconciled",
		zap.Int64("manager_id", managerID),
		zap.Int("slots", len(stamped)),
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("deleted", deleted),
	)

	return &ReconcileResult{Inserted: inserted, Updated: updated, Deleted: deleted}, nil
}

// AddException blocks a specific date for the manager. A duplicate date
// is rejected rather than layered.
func (s *AvailabilityService) AddException(ctx context.Context, managerID int64, date time.Time, reason string) (*model.DateException, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: exception date is required", availability.ErrValidationFailed)
	}

	e := &model.DateException{
		ManagerID: managerID,
		Date:      model.DateKey(date),
		Reason:    reason,
	}

	if err := s.store.InsertException(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Date exception added",
		zap.Int64("manager_id", managerID),
		zap.Time("date", e.Date),
	)

	return e, nil
}

// RemoveException lifts the block on a date.
func (s *AvailabilityService) RemoveException(ctx context.Context, managerID int64, date time.Time) error {
	if err := s.store.DeleteException(ctx, managerID, date); err != nil {
		return err
	}

	s.logger.Info("Date exception removed",
		zap.Int64("manager_id", managerID),
		zap.Time("date", model.DateKey(date)),
	)

	return nil
}

// Exceptions lists the manager's date exceptions.
func (s *AvailabilityService) Exceptions(ctx context.Context, managerID int64) ([]model.DateException, error) {
	return s.store.Exceptions(ctx, managerID)
}

// PurgeExpiredExceptions drops exceptions whose date has already passed.
// Past dates are unbookable anyway, so removing the rows only tidies the
// list managers see.
func (s *AvailabilityService) PurgeExpiredExceptions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredExceptions(ctx, model.DateKey(time.Now().UTC()))
}
