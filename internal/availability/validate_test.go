package availability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
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

func TestValidateInvalidInterval(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"start after end", "12:00", "09:00"},
		{"zero-width", "09:00", "09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := availability.Validate(slot(1, time.Monday, tt.start, tt.end), nil)
			assert.ErrorIs(t, err, availability.ErrInvalidInterval)
		})
	}
}

func TestValidateOverlap(t *testing.T) {
	existing := []model.AvailabilitySlot{slot(1, time.Monday, "09:00", "12:00")}
	existing[0].ID = 7

	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"identical", "09:00", "12:00", true},
		{"contained", "10:00", "11:00", true},
		{"straddles start", "08:00", "09:30", true},
		{"straddles end", "11:30", "13:00", true},
		{"covers", "08:00", "13:00", true},
		{"touches end", "12:00", "14:00", false},
		{"touches start", "07:00", "09:00", false},
		{"disjoint", "14:00", "16:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := availability.Validate(slot(1, time.Monday, tt.start, tt.end), existing)
			if tt.wantErr {
				require.ErrorIs(t, err, availability.ErrOverlapConflict)

				var overlap *availability.OverlapError
				require.True(t, errors.As(err, &overlap))
				assert.Equal(t, int64(7), overlap.Conflicting.ID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIgnoresOtherScopes(t *testing.T) {
	existing := []model.AvailabilitySlot{
		slot(1, time.Tuesday, "09:00", "12:00"), // other weekday
		slot(2, time.Monday, "09:00", "12:00"),  // other manager
	}
	unavailable := slot(1, time.Monday, "09:00", "12:00")
	unavailable.IsAvailable = false
	existing = append(existing, unavailable)

	err := availability.Validate(slot(1, time.Monday, "09:00", "12:00"), existing)
	assert.NoError(t, err)
}

func TestValidateIgnoresSelfOnEdit(t *testing.T) {
	s := slot(1, time.Monday, "09:00", "12:00")
	s.ID = 3

	edited := s
	edited.End = model.MustTimeOfDay("13:00")

	assert.NoError(t, availability.Validate(edited, []model.AvailabilitySlot{s}))
}

func TestValidateSet(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		set := []model.AvailabilitySlot{
			slot(1, time.Monday, "09:00", "12:00"),
			slot(1, time.Monday, "13:00", "17:00"),
			slot(1, time.Tuesday, "09:00", "12:00"),
		}
		assert.NoError(t, availability.ValidateSet(set))
	})

	t.Run("overlapping pair", func(t *testing.T) {
		set := []model.AvailabilitySlot{
			slot(1, time.Monday, "09:00", "12:00"),
			slot(1, time.Monday, "11:00", "14:00"),
		}
		assert.ErrorIs(t, availability.ValidateSet(set), availability.ErrOverlapConflict)
	})

	t.Run("bad interval caught even when unavailable", func(t *testing.T) {
		bad := slot(1, time.Monday, "12:00", "09:00")
		bad.IsAvailable = false
		assert.ErrorIs(t, availability.ValidateSet([]model.AvailabilitySlot{bad}), availability.ErrInvalidInterval)
	})
}
