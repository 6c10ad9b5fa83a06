// Package store provides an in-memory implementation of the service
// store contracts, used by the tests and for local development without
// Postgres. It mirrors the persisted shape: one recurring row per
// (manager, weekday), one exception per (manager, date), and a
// uniqueness guard on live booking windows.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
)

type recurringKey struct {
	ManagerID int64
	Weekday   time.Weekday
}

type exceptionKey struct {
	ManagerID int64
	Date      time.Time
}

type windowKey struct {
	ManagerID int64
	Date      time.Time
	Start     model.TimeOfDay
}

type Memory struct {
	mu         sync.Mutex
	nextID     int64
	recurring  map[recurringKey]model.AvailabilitySlot
	exceptions map[exceptionKey]model.DateException
	bookings   map[int64]model.MeetingBooking

	// ReplaceErr, when set, makes ReplaceRecurring fail without applying
	// anything. Used to exercise the all-or-nothing contract.
	ReplaceErr error
}

func NewMemory() *Memory {
	return &Memory{
		recurring:  make(map[recurringKey]model.AvailabilitySlot),
		exceptions: make(map[exceptionKey]model.DateException),
		bookings:   make(map[int64]model.MeetingBooking),
	}
}

func (m *Memory) RecurringSlots(_ context.Context, managerID int64) ([]model.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var slots []model.AvailabilitySlot
	for k, s := range m.recurring {
		if k.ManagerID == managerID {
			slots = append(slots, s)
		}
	}
	slices.SortFunc(slots, func(a, b model.AvailabilitySlot) int {
		if a.Weekday != b.Weekday {
			return int(a.Weekday) - int(b.Weekday)
		}
		return int(a.Start) - int(b.Start)
	})
	return slots, nil
}

func (m *Memory) MeetingDuration(_ context.Context, managerID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := 0
	for k, s := range m.recurring {
		if k.ManagerID == managerID && s.MeetingDurationMinutes > duration {
			duration = s.MeetingDurationMinutes
		}
	}
	return duration, nil
}

func (m *Memory) ReplaceRecurring(_ context.Context, managerID int64, desired []model.AvailabilitySlot) (inserted, updated, deleted int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReplaceErr != nil {
		return 0, 0, 0, m.ReplaceErr
	}

	keep := make(map[time.Weekday]bool, len(desired))
	for _, s := range desired {
		keep[s.Weekday] = true
	}

	for k := range m.recurring {
		if k.ManagerID == managerID && !keep[k.Weekday] {
			delete(m.recurring, k)
			deleted++
		}
	}

	now := time.Now()
	for _, s := range desired {
		k := recurringKey{ManagerID: managerID, Weekday: s.Weekday}
		s.ManagerID = managerID
		if prev, ok := m.recurring[k]; ok {
			s.ID = prev.ID
			s.CreatedAt = prev.CreatedAt
			s.UpdatedAt = now
			updated++
		} else {
			m.nextID++
			s.ID = m.nextID
			s.CreatedAt = now
			s.UpdatedAt = now
			inserted++
		}
		m.recurring[k] = s
	}

	return inserted, updated, deleted, nil
}

func (m *Memory) Exceptions(_ context.Context, managerID int64) ([]model.DateException, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exceptions []model.DateException
	for k, e := range m.exceptions {
		if k.ManagerID == managerID {
			exceptions = append(exceptions, e)
		}
	}
	slices.SortFunc(exceptions, func(a, b model.DateException) int {
		return a.Date.Compare(b.Date)
	})
	return exceptions, nil
}

func (m *Memory) InsertException(_ context.Context, e *model.DateException) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := exceptionKey{ManagerID: e.ManagerID, Date: model.DateKey(e.Date)}
	if _, ok := m.exceptions[k]; ok {
		return availability.ErrDuplicateException
	}

	m.nextID++
	e.ID = m.nextID
	e.Date = k.Date
	e.CreatedAt = time.Now()
	m.exceptions[k] = *e
	return nil
}

func (m *Memory) DeleteException(_ context.Context, managerID int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := exceptionKey{ManagerID: managerID, Date: model.DateKey(date)}
	if _, ok := m.exceptions[k]; !ok {
		return availability.ErrNotFound
	}
	delete(m.exceptions, k)
	return nil
}

func (m *Memory) DeleteExpiredExceptions(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := model.DateKey(before)
	purged := 0
	for k := range m.exceptions {
		if k.Date.Before(cutoff) {
			delete(m.exceptions, k)
			purged++
		}
	}
	return purged, nil
}

func (m *Memory) ActiveBookings(_ context.Context, managerID int64, from, to time.Time) ([]model.MeetingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fromKey := model.DateKey(from)
	toKey := model.DateKey(to)

	var bookings []model.MeetingBooking
	for _, b := range m.bookings {
		if b.ManagerID != managerID || !b.Status.Occupies() {
			continue
		}
		if b.Date.Before(fromKey) || b.Date.After(toKey) {
			continue
		}
		bookings = append(bookings, b)
	}
	slices.SortFunc(bookings, func(a, b model.MeetingBooking) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return int(a.Start) - int(b.Start)
	})
	return bookings, nil
}

func (m *Memory) BookingByID(_ context.Context, id int64) (*model.MeetingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// Insert enforces the same uniqueness guard as the partial index on the
// bookings table: one live booking per (manager, date, start). The check
// and the write share the mutex, making this the atomic
// check-and-insert the booking resolver requires.
func (m *Memory) Insert(_ context.Context, b *model.MeetingBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := windowKey{ManagerID: b.ManagerID, Date: model.DateKey(b.Date), Start: b.Start}
	for _, existing := range m.bookings {
		if !existing.Status.Occupies() {
			continue
		}
		if (windowKey{existing.ManagerID, model.DateKey(existing.Date), existing.Start}) == k {
			return availability.ErrDoubleBooking
		}
	}

	m.nextID++
	b.ID = m.nextID
	b.Date = k.Date
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	m.bookings[b.ID] = *b
	return nil
}

func (m *Memory) Cancel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok || b.Status == model.BookingStatusCancelled {
		return availability.ErrNotFound
	}
	b.Status = model.BookingStatusCancelled
	b.UpdatedAt = time.Now()
	m.bookings[id] = b
	return nil
}
