package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
	"github.com/talentops/scheduler/internal/repository/base"
)

// AvailabilityRepository persists recurring slots and date exceptions.
// Both live in manager_availability: recurring rows carry a NULL
// exception_date and are unique per (manager_id, weekday); exception rows
// carry the date and are unique per (manager_id, exception_date).
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewAvailabilityRepository(pool *pgxpool.Pool, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// RecurringSlots returns the manager's recurring rows ordered by weekday
// and start time.
func (r *AvailabilityRepository) RecurringSlots(ctx context.Context, managerID int64) ([]model.AvailabilitySlot, error) {
	query := `
		SELECT id, manager_id, weekday, start_minutes, end_minutes, is_available, meeting_duration_minutes, created_at, updated_at
		FROM manager_availability
		WHERE manager_id = $1 AND exception_date IS NULL
		ORDER BY weekday, start_minutes
	`

	rows, err := r.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("get recurring slots: %w", err)
	}
	defer rows.Close()

	var slots []model.AvailabilitySlot
	for rows.Next() {
		var s model.AvailabilitySlot
		var weekday, start, end int
		err := rows.Scan(
			&s.ID,
			&s.ManagerID,
			&weekday,
			&start,
			&end,
			&s.IsAvailable,
			&s.MeetingDurationMinutes,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recurring slot: %w", err)
		}
		s.Weekday = time.Weekday(weekday)
		s.Start = model.TimeOfDay(start)
		s.End = model.TimeOfDay(end)
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// MeetingDuration returns the manager's meeting duration in minutes, or 0
// when the manager has no recurring rows yet.
func (r *AvailabilityRepository) MeetingDuration(ctx context.Context, managerID int64) (int, error) {
	query := `
		SELECT COALESCE(MAX(meeting_duration_minutes), 0)
		FROM manager_availability
		WHERE manager_id = $1 AND exception_date IS NULL
	`

	var minutes int
	if err := r.QueryRow(ctx, query, managerID).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("get meeting duration: %w", err)
	}

	return minutes, nil
}

// ReplaceRecurring reconciles the manager's persisted recurring rows with
// the desired set in a single transaction: rows whose weekday is absent
// from the desired set are deleted, every desired slot is upserted keyed
// by (manager_id, weekday). All-or-nothing; on error nothing is applied.
func (r *AvailabilityRepository) ReplaceRecurring(ctx context.Context, managerID int64, desired []model.AvailabilitySlot) (inserted, updated, deleted int, err error) {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback(ctx)

	keep := make([]int32, 0, len(desired))
	seen := make(map[time.Weekday]bool, len(desired))
	for _, s := range desired {
		if !seen[s.Weekday] {
			seen[s.Weekday] = true
			keep = append(keep, int32(s.Weekday))
		}
	}

	deleteQuery := `
		DELETE FROM manager_availability
		WHERE manager_id = $1 AND exception_date IS NULL AND weekday <> ALL($2)
	`
	tag, err := tx.Exec(ctx, deleteQuery, managerID, keep)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("delete stale recurring rows: %w", err)
	}
	deleted = int(tag.RowsAffected())

	upsertQuery := `
		INSERT INTO manager_availability (manager_id, weekday, start_minutes, end_minutes, is_available, meeting_duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (manager_id, weekday) WHERE exception_date IS NULL
		DO UPDATE SET
			start_minutes = EXCLUDED.start_minutes,
			end_minutes = EXCLUDED.end_minutes,
			is_available = EXCLUDED.is_available,
			meeting_duration_minutes = EXCLUDED.meeting_duration_minutes,
			updated_at = now()
		RETURNING (xmax = 0)
	`
	for _, s := range desired {
		var wasInsert bool
		err := tx.QueryRow(
			ctx,
			upsertQuery,
			managerID,
			int(s.Weekday),
			s.Start.Minutes(),
			s.End.Minutes(),
			s.IsAvailable,
			s.MeetingDurationMinutes,
		).Scan(&wasInsert)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("upsert recurring slot weekday %d: %w", s.Weekday, err)
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("commit reconcile: %w", err)
	}

	r.logger.Debug("Recurring availability replaced",
		zap.Int64("manager_id", managerID),
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("deleted", deleted),
	)

	return inserted, updated, deleted, nil
}

// Exceptions returns the manager's date exceptions ordered by date.
func (r *AvailabilityRepository) Exceptions(ctx context.Context, managerID int64) ([]model.DateException, error) {
	query := `
		SELECT id, manager_id, exception_date, COALESCE(reason, ''), created_at
		FROM manager_availability
		WHERE manager_id = $1 AND exception_date IS NOT NULL
		ORDER BY exception_date
	`

	rows, err := r.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("get exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []model.DateException
	for rows.Next() {
		var e model.DateException
		if err := rows.Scan(&e.ID, &e.ManagerID, &e.Date, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		e.Date = model.DateKey(e.Date)
		exceptions = append(exceptions, e)
	}

	return exceptions, rows.Err()
}

// InsertException adds a full-day block for the date. A second exception
// for the same manager and date is rejected, not layered.
func (r *AvailabilityRepository) InsertException(ctx context.Context, e *model.DateException) error {
	query := `
		INSERT INTO manager_availability (manager_id, exception_date, start_minutes, end_minutes, is_available, meeting_duration_minutes, reason)
		VALUES ($1, $2, 0, 0, false, 0, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, e.ManagerID, model.DateKey(e.Date), e.Reason).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err, "manager_availability_exception_key") {
			return availability.ErrDuplicateException
		}
		return fmt.Errorf("insert exception: %w", err)
	}

	return nil
}

// DeleteException removes the manager's exception for the date.
func (r *AvailabilityRepository) DeleteException(ctx context.Context, managerID int64, date time.Time) error {
	query := `
		DELETE FROM manager_availability
		WHERE manager_id = $1 AND exception_date = $2
	`

	affected, err := r.ExecAffected(ctx, query, managerID, model.DateKey(date))
	if err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	if affected == 0 {
		return availability.ErrNotFound
	}

	return nil
}

// DeleteExpiredExceptions removes exceptions dated strictly before the
// given day, across all managers. Run by the maintenance loop.
func (r *AvailabilityRepository) DeleteExpiredExceptions(ctx context.Context, before time.Time) (int, error) {
	query := `
		DELETE FROM manager_availability
		WHERE exception_date IS NOT NULL AND exception_date < $1
	`

	affected, err := r.ExecAffected(ctx, query, model.DateKey(before))
	if err != nil {
		return 0, fmt.Errorf("delete expired exceptions: %w", err)
	}

	return int(affected), nil
}
