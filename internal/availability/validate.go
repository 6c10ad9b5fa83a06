package availability

import (
	"github.com/talentops/scheduler/internal/model"
)

// Validate checks a candidate slot against the interval invariants:
// start strictly before end, and no intersection with any other available
// slot for the same manager and weekday. Existing slots that are marked
// unavailable, belong to another manager or weekday, or share the
// candidate's ID (an edit of itself) are ignored.
//
// Intervals are half-open [start, end), so back-to-back slots like
// 09:00-12:00 and 12:00-14:00 do not conflict.
func Validate(candidate model.AvailabilitySlot, existing []model.AvailabilitySlot) error {
	if candidate.Start >= candidate.End {
		return ErrInvalidInterval
	}

	for _, s := range existing {
		if !s.IsAvailable {
			continue
		}
		if s.ManagerID != candidate.ManagerID || s.Weekday != candidate.Weekday {
			continue
		}
		if candidate.ID != 0 && s.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(s) {
			return &OverlapError{Conflicting: s}
		}
	}

	return nil
}

// ValidateSet checks every slot in the set pairwise. Used as the
// pre-commit defense before reconciliation writes anything.
func ValidateSet(slots []model.AvailabilitySlot) error {
	for i, candidate := range slots {
		if candidate.Start >= candidate.End {
			return ErrInvalidInterval
		}
		if !candidate.IsAvailable {
			continue
		}
		for j, s := range slots {
			if i == j || !s.IsAvailable {
				continue
			}
			if s.ManagerID != candidate.ManagerID || s.Weekday != candidate.Weekday {
				continue
			}
			if candidate.Overlaps(s) {
				return &OverlapError{Conflicting: s}
			}
		}
	}

	return nil
}
