package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
)

// BookingRequest is a creator's attempt to reserve a manager's window.
// DurationMinutes of zero means "use the manager's meeting duration".
type BookingRequest struct {
	ManagerID       int64
	CreatorID       int64
	Date            time.Time
	Start           model.TimeOfDay
	DurationMinutes int
}

// BookingService resolves free meeting windows from recurring
// availability, date exceptions and existing bookings, and runs the
// booking state machine: Requested -> Validating -> Confirmed/Rejected.
type BookingService struct {
	availStore   AvailabilityStore
	bookingStore BookingStore
	logger       *zap.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewBookingService(availStore AvailabilityStore, bookingStore BookingStore, logger *zap.Logger) *BookingService {
	return &BookingService{
		availStore:   availStore,
		bookingStore: bookingStore,
		logger:       logger,
		now:          time.Now,
	}
}

// FreeWindows enumerates the bookable windows for a manager over
// [from, to]: recurring slots expanded to dates, exception dates removed,
// booked time subtracted, and the remaining free ranges sliced into
// increments of the meeting duration. durationMinutes of zero uses the
// manager's setting.
func (s *BookingService) FreeWindows(ctx context.Context, managerID int64, from, to time.Time, durationMinutes int) ([]model.ConcreteWindow, error) {
	slots, exceptions, bookings, managerDuration, err := s.loadScheduleData(ctx, managerID, from, to)
	if err != nil {
		return nil, err
	}

	if durationMinutes <= 0 {
		durationMinutes = managerDuration
	}

	expanded := availability.Expand(slots, from, to)
	open := availability.ApplyExceptions(expanded, exceptions)
	free := availability.SubtractBookings(open, bookings)

	var windows []model.ConcreteWindow
	for w := range availability.SliceWindows(free, durationMinutes) {
		windows = append(windows, w)
	}

	return windows, nil
}

// Book validates the request against the same pipeline FreeWindows uses
// and, if the window is free, commits it through the store's atomic
// check-and-insert. Rejections:
//
//   - ErrPastDate: the window starts before now
//   - ErrOutsideAvailability: no recurring/exception window covers it
//   - ErrSlotUnavailable: covered, but occupied by another booking
//   - ErrDoubleBooking: a concurrent booking won the insert race
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*model.MeetingBooking, error) {
	date := model.DateKey(req.Date)

	slots, exceptions, bookings, managerDuration, err := s.loadScheduleData(ctx, req.ManagerID, date, date)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = managerDuration
	}
	end := req.Start.AddMinutes(duration)

	if s.isPast(date, req.Start) {
		return nil, availability.ErrPastDate
	}

	open := availability.ApplyExceptions(availability.Expand(slots, date, date), exceptions)
	if !availability.Contains(open, date, req.Start, end) {
		return nil, availability.ErrOutsideAvailability
	}

	free := availability.SubtractBookings(open, bookings)
	if !availability.Contains(free, date, req.Start, end) {
		return nil, availability.ErrSlotUnavailable
	}

	booking := &model.MeetingBooking{
		Reference:       uuid.New(),
		ManagerID:       req.ManagerID,
		CreatorID:       req.CreatorID,
		Date:            date,
		Start:           req.Start,
		DurationMinutes: duration,
		Status:          model.BookingStatusConfirmed,
	}

	// Two validating passes can both see the slot free; the insert's
	// uniqueness guard decides the winner.
	if err := s.bookingStore.Insert(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Booking confirmed",
		zap.Int64("booking_id", booking.ID),
		zap.String("reference", booking.Reference.String()),
		zap.Int64("manager_id", req.ManagerID),
		zap.Int64("creator_id", req.CreatorID),
		zap.Time("date", date),
		zap.String("start", req.Start.String()),
	)

	return booking, nil
}

// Cancel marks a booking cancelled, freeing its window for rebooking.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) error {
	booking, err := s.bookingStore.BookingByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return availability.ErrNotFound
	}

	if err := s.bookingStore.Cancel(ctx, bookingID); err != nil {
		return err
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("manager_id", booking.ManagerID),
	)

	return nil
}

// Bookings lists a manager's active bookings over [from, to].
func (s *BookingService) Bookings(ctx context.Context, managerID int64, from, to time.Time) ([]model.MeetingBooking, error) {
	return s.bookingStore.ActiveBookings(ctx, managerID, from, to)
}

func (s *BookingService) loadScheduleData(ctx context.Context, managerID int64, from, to time.Time) ([]model.AvailabilitySlot, []model.DateException, []model.MeetingBooking, int, error) {
	slots, err := s.availStore.RecurringSlots(ctx, managerID)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("load recurring slots: %w", err)
	}

	exceptions, err := s.availStore.Exceptions(ctx, managerID)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("load exceptions: %w", err)
	}

	bookings, err := s.bookingStore.ActiveBookings(ctx, managerID, from, to)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("load bookings: %w", err)
	}

	duration, err := s.availStore.MeetingDuration(ctx, managerID)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("load meeting duration: %w", err)
	}
	if duration == 0 {
		duration = DefaultMeetingDuration
	}

	return slots, exceptions, bookings, duration, nil
}

// isPast reports whether the window start is earlier than the current
// wall-clock time, compared in UTC.
func (s *BookingService) isPast(date time.Time, start model.TimeOfDay) bool {
	startAt := date.Add(time.Duration(start.Minutes()) * time.Minute)
	return startAt.Before(s.now().UTC())
}
