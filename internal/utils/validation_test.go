package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

func TestValidateScheduleWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateScheduleWindow(start, start.Add(6*time.Hour)))
	assert.Error(t, ValidateScheduleWindow(start, start))
	assert.Error(t, ValidateScheduleWindow(start, start.Add(-time.Hour)))
}

func TestValidateUnit(t *testing.T) {
	t.Parallel()

	for _, unit := range domain.Units {
		assert.NoError(t, ValidateUnit(unit))
	}
	assert.Error(t, ValidateUnit("Unit 9"))
	assert.Error(t, ValidateUnit(""))
}

func TestValidateTanodIDs(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTanodIDs([]int64{1, 2, 3}))
	assert.Error(t, ValidateTanodIDs(nil))
	assert.Error(t, ValidateTanodIDs([]int64{4, 5, 4}))
}

func TestValidatePatrolAreaFields(t *testing.T) {
	t.Parallel()

	triangle := []domain.Coordinate{
		{Lat: 14.60, Lng: 121.02},
		{Lat: 14.61, Lng: 121.02},
		{Lat: 14.61, Lng: 121.03},
	}

	assert.NoError(t, ValidatePatrolAreaFields("Zone 1 - Poblacion", triangle))
	assert.Error(t, ValidatePatrolAreaFields("   ", triangle))
	assert.Error(t, ValidatePatrolAreaFields("Zone 1", triangle[:2]))
}
