package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleTemporalStatusAt(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := &Schedule{StartTime: start, EndTime: end}

	assert.Equal(t, StatusUpcoming, s.TemporalStatusAt(start.Add(-time.Minute)))
	assert.Equal(t, StatusOngoing, s.TemporalStatusAt(start))
	assert.Equal(t, StatusOngoing, s.TemporalStatusAt(end.Add(-time.Second)))
	assert.Equal(t, StatusCompleted, s.TemporalStatusAt(end))
	assert.Equal(t, StatusCompleted, s.TemporalStatusAt(end.Add(time.Hour)))
}

func TestScheduleExecutionFor(t *testing.T) {
	t.Parallel()

	s := &Schedule{
		Executions: []Execution{
			{TanodID: 1, Status: ExecutionNotStarted},
			{TanodID: 2, Status: ExecutionStarted},
		},
	}

	exec := s.ExecutionFor(2)
	assert.NotNil(t, exec)
	assert.Equal(t, ExecutionStarted, exec.Status)
	assert.Nil(t, s.ExecutionFor(3))

	// the pointer aliases the schedule's own slice
	exec.Status = ExecutionEnded
	assert.Equal(t, ExecutionEnded, s.Executions[1].Status)
}
