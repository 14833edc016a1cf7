package domain

import "time"

var Units = []string{"Unit 1", "Unit 2", "Unit 3"}

type ExecutionStatus string

const (
	ExecutionNotStarted ExecutionStatus = "Not Started"
	ExecutionStarted    ExecutionStatus = "Started"
	ExecutionEnded      ExecutionStatus = "Ended"
)

// Execution is the per-tanod runtime state of one schedule slot. An entry is
// created together with the schedule and only ever moves forward:
// Not Started -> Started -> Ended.
type Execution struct {
	TanodID   int64           `json:"tanodID"`
	Status    ExecutionStatus `json:"status"`
	StartedAt *time.Time      `json:"startedAt,omitempty"`
	EndedAt   *time.Time      `json:"endedAt,omitempty"`
}

type TemporalStatus string

const (
	StatusUpcoming  TemporalStatus = "Upcoming"
	StatusOngoing   TemporalStatus = "Ongoing"
	StatusCompleted TemporalStatus = "Completed"
)

type Schedule struct {
	ID           int64       `json:"id"`
	Unit         string      `json:"unit"`
	StartTime    time.Time   `json:"startTime"`
	EndTime      time.Time   `json:"endTime"`
	PatrolAreaID *int64      `json:"patrolAreaID"`
	Executions   []Execution `json:"executions"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`

	// Derived from the clock on every read, never persisted.
	Status TemporalStatus `json:"status,omitempty"`
}

// TemporalStatusAt derives the schedule's wall-clock status against the
// half-open window [StartTime, EndTime).
func (s *Schedule) TemporalStatusAt(now time.Time) TemporalStatus {
	switch {
	case now.Before(s.StartTime):
		return StatusUpcoming
	case now.Before(s.EndTime):
		return StatusOngoing
	default:
		return StatusCompleted
	}
}

func (s *Schedule) ExecutionFor(tanodID int64) *Execution {
	for i := range s.Executions {
		if s.Executions[i].TanodID == tanodID {
			return &s.Executions[i]
		}
	}
	return nil
}

func (s *Schedule) TanodIDs() []int64 {
	ids := make([]int64, 0, len(s.Executions))
	for _, e := range s.Executions {
		ids = append(ids, e.TanodID)
	}
	return ids
}
