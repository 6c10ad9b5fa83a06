package service

import (
	"context"
	"time"

	"github.com/talentops/scheduler/internal/model"
)

// AvailabilityStore is the persistence contract the availability service
// needs: read recurring slots, exceptions and meeting duration; replace a
// manager's recurring rows atomically; insert and delete exceptions.
// Implemented by repository.AvailabilityRepository and by the in-memory
// fake in the tests.
type AvailabilityStore interface {
	RecurringSlots(ctx context.Context, managerID int64) ([]model.AvailabilitySlot, error)
	MeetingDuration(ctx context.Context, managerID int64) (int, error)

	// ReplaceRecurring deletes rows whose weekday is absent from desired
	// and upserts every desired slot keyed by (manager, weekday), all in
	// one atomic unit. On error nothing is applied.
	ReplaceRecurring(ctx context.Context, managerID int64, desired []model.AvailabilitySlot) (inserted, updated, deleted int, err error)

	Exceptions(ctx context.Context, managerID int64) ([]model.DateException, error)
	InsertException(ctx context.Context, e *model.DateException) error
	DeleteException(ctx context.Context, managerID int64, date time.Time) error

	// DeleteExpiredExceptions removes exceptions dated strictly before
	// the given day, across all managers.
	DeleteExpiredExceptions(ctx context.Context, before time.Time) (int, error)
}

// BookingStore is the persistence contract for meeting bookings. Insert
// must be an atomic check-and-insert: a concurrent insert for the same
// (manager, date, start) loses with availability.ErrDoubleBooking.
type BookingStore interface {
	ActiveBookings(ctx context.Context, managerID int64, from, to time.Time) ([]model.MeetingBooking, error)
	BookingByID(ctx context.Context, id int64) (*model.MeetingBooking, error)
	Insert(ctx context.Context, b *model.MeetingBooking) error
	Cancel(ctx context.Context, id int64) error
}
