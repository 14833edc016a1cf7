package utils

import (
	"slices"
	"strings"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

func ValidateScheduleWindow(start, end time.Time) error {
	if !start.Before(end) {
		return domain.NewValidationError("the start time must be before the end time")
	}
	return nil
}

func ValidateUnit(unit string) error {
	if !slices.Contains(domain.Units, unit) {
		return domain.NewValidationError("unknown unit %q", unit)
	}
	return nil
}

func ValidateTanodIDs(ids []int64) error {
	if len(ids) == 0 {
		return domain.NewValidationError("at least one tanod must be assigned")
	}

	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			return domain.NewValidationError("tanod %d is assigned more than once", id)
		}
		seen[id] = true
	}

	return nil
}

func ValidatePatrolAreaFields(legend string, coordinates []domain.Coordinate) error {
	if strings.TrimSpace(legend) == "" {
		return domain.NewValidationError("the legend must not be empty")
	}
	if len(coordinates) < 3 {
		return domain.NewValidationError("a patrol area needs at least 3 coordinates")
	}
	return nil
}
