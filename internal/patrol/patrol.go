// Package patrol holds the pure scheduling rules: window overlap, area
// availability, and the guards for starting and ending patrol executions.
// Everything here is side-effect free so the rules can be checked repeatedly
// during interactive editing and re-checked at submission time.
package patrol

import (
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Windows that merely touch at a boundary do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsAreaAvailable reports whether areaID is free for the candidate window,
// scanning the given schedules. excludeScheduleID skips the schedule being
// edited; pass 0 when creating.
func IsAreaAvailable(schedules []*domain.Schedule, areaID int64, start, end time.Time, excludeScheduleID int64) bool {
	for _, s := range schedules {
		if s.ID == excludeScheduleID {
			continue
		}
		if s.PatrolAreaID == nil || *s.PatrolAreaID != areaID {
			continue
		}
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			return false
		}
	}
	return true
}

// AvailableAreas filters areas down to those free for the candidate window.
func AvailableAreas(areas []*domain.PatrolArea, schedules []*domain.Schedule, start, end time.Time) []*domain.PatrolArea {
	available := make([]*domain.PatrolArea, 0, len(areas))
	for _, area := range areas {
		if IsAreaAvailable(schedules, area.ID, start, end, 0) {
			available = append(available, area)
		}
	}
	return available
}

// CheckStart validates the start-patrol guard: the clock must be no earlier
// than grace before the scheduled start and no later than the scheduled end.
// Both edges are inclusive.
func CheckStart(s *domain.Schedule, now time.Time, grace time.Duration) error {
	earliest := s.StartTime.Add(-grace)
	if now.Before(earliest) || now.After(s.EndTime) {
		return domain.NewTimeWindowError(
			"a patrol can only be started within %d minutes of the scheduled start, and not after the scheduled end",
			int(grace.Minutes()),
		)
	}
	return nil
}

// CheckEnd validates the end-patrol confirmation gate. Ending before the
// scheduled end requires explicit confirmation; at or past the end it
// proceeds unconditionally.
func CheckEnd(s *domain.Schedule, now time.Time, confirmed bool) error {
	if now.Before(s.EndTime) && !confirmed {
		return &domain.ConfirmationRequiredError{}
	}
	return nil
}

// CheckStartable validates the execution-state side of a start attempt: the
// tanod's slot on s must still be Not Started (Ended is terminal, a finished
// execution never restarts), and no execution of the same tanod on any
// schedule in all may currently be Started. The repository re-checks both
// rules inside the transaction; this is the shared pre-check.
func CheckStartable(s *domain.Schedule, all []*domain.Schedule, tanodID int64) error {
	exec := s.ExecutionFor(tanodID)
	if exec == nil {
		return domain.NewValidationError("you are not assigned to this schedule")
	}
	if exec.Status != domain.ExecutionNotStarted {
		return domain.NewConflictError("the patrol is not in a startable state")
	}

	for _, other := range all {
		if other.ID == s.ID {
			continue
		}
		if e := other.ExecutionFor(tanodID); e != nil && e.Status == domain.ExecutionStarted {
			return domain.NewConflictError("another patrol is already in progress for this tanod")
		}
	}

	return nil
}

// CheckEndable validates that the tanod's execution on s can move to Ended:
// only a Started execution may end.
func CheckEndable(s *domain.Schedule, tanodID int64) error {
	exec := s.ExecutionFor(tanodID)
	if exec == nil {
		return domain.NewValidationError("you are not assigned to this schedule")
	}
	if exec.Status != domain.ExecutionStarted {
		return domain.NewConflictError("the patrol is not in progress")
	}
	return nil
}
