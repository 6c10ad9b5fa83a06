package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
	"github.com/talentops/scheduler/internal/repository/base"
)

// BookingRepository reads and writes meeting bookings. The table carries
// a partial unique index on (manager_id, date, start_minutes) for rows
// whose status is not cancelled; losing that race is reported as
// availability.ErrDoubleBooking, never as a generic failure.
type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// ActiveBookings returns the manager's non-cancelled bookings whose date
// falls within [from, to].
func (r *BookingRepository) ActiveBookings(ctx context.Context, managerID int64, from, to time.Time) ([]model.MeetingBooking, error) {
	query := `
		SELECT id, reference, manager_id, creator_id, meeting_date, start_minutes, duration_minutes, status, created_at, updated_at
		FROM meeting_bookings
		WHERE manager_id = $1 AND status <> 'cancelled' AND meeting_date BETWEEN $2 AND $3
		ORDER BY meeting_date, start_minutes
	`

	rows, err := r.Query(ctx, query, managerID, model.DateKey(from), model.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("get active bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.MeetingBooking
	for rows.Next() {
		var b model.MeetingBooking
		var start int
		err := rows.Scan(
			&b.ID,
			&b.Reference,
			&b.ManagerID,
			&b.CreatorID,
			&b.Date,
			&start,
			&b.DurationMinutes,
			&b.Status,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Start = model.TimeOfDay(start)
		b.Date = model.DateKey(b.Date)
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// BookingByID returns a booking, or nil when no row exists.
func (r *BookingRepository) BookingByID(ctx context.Context, id int64) (*model.MeetingBooking, error) {
	query := `
		SELECT id, reference, manager_id, creator_id, meeting_date, start_minutes, duration_minutes, status, created_at, updated_at
		FROM meeting_bookings
		WHERE id = $1
	`

	var b model.MeetingBooking
	var start int
	err := r.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Reference,
		&b.ManagerID,
		&b.CreatorID,
		&b.Date,
		&start,
		&b.DurationMinutes,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	b.Start = model.TimeOfDay(start)
	b.Date = model.DateKey(b.Date)
	return &b, nil
}

// Insert writes a booking under the uniqueness guard. This is the atomic
// check-and-insert the resolver's Confirmed transition depends on: two
// concurrent inserts for the same manager, date and start time cannot
// both succeed.
func (r *BookingRepository) Insert(ctx context.Context, b *model.MeetingBooking) error {
	query := `
		INSERT INTO meeting_bookings (reference, manager_id, creator_id, meeting_date, start_minutes, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		b.Reference,
		b.ManagerID,
		b.CreatorID,
		model.DateKey(b.Date),
		b.Start.Minutes(),
		b.DurationMinutes,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, "meeting_bookings_window_key") {
			return availability.ErrDoubleBooking
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

// Cancel marks a booking cancelled. The conditional update means a
// booking can only be cancelled once; a second attempt reports not found.
func (r *BookingRepository) Cancel(ctx context.Context, id int64) error {
	query := `
		UPDATE meeting_bookings
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if affected == 0 {
		return availability.ErrNotFound
	}

	return nil
}
