package patrol

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	day := "2025-03-10T"
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"partial overlap", "08:00", "12:00", "10:00", "14:00", true},
		{"contained", "08:00", "12:00", "09:00", "10:00", true},
		{"identical", "08:00", "12:00", "08:00", "12:00", true},
		{"touching boundary", "08:00", "12:00", "12:00", "16:00", false},
		{"touching boundary reversed", "12:00", "16:00", "08:00", "12:00", false},
		{"disjoint", "08:00", "10:00", "14:00", "16:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(
				mustParse(t, day+tc.aStart+":00+08:00"),
				mustParse(t, day+tc.aEnd+":00+08:00"),
				mustParse(t, day+tc.bStart+":00+08:00"),
				mustParse(t, day+tc.bEnd+":00+08:00"),
			)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsAreaAvailable(t *testing.T) {
	t.Parallel()

	blockA := int64(7)
	s1 := &domain.Schedule{
		ID:           1,
		Unit:         "Unit 1",
		StartTime:    mustParse(t, "2025-03-10T08:00:00+08:00"),
		EndTime:      mustParse(t, "2025-03-10T12:00:00+08:00"),
		PatrolAreaID: &blockA,
	}
	unassigned := &domain.Schedule{
		ID:        2,
		Unit:      "Unit 2",
		StartTime: mustParse(t, "2025-03-10T08:00:00+08:00"),
		EndTime:   mustParse(t, "2025-03-10T12:00:00+08:00"),
	}
	schedules := []*domain.Schedule{s1, unassigned}

	// 10:00-14:00 overlaps s1 on 10:00-12:00
	assert.False(t, IsAreaAvailable(schedules, blockA,
		mustParse(t, "2025-03-10T10:00:00+08:00"),
		mustParse(t, "2025-03-10T14:00:00+08:00"), 0))

	// 12:00-16:00 only touches the boundary
	assert.True(t, IsAreaAvailable(schedules, blockA,
		mustParse(t, "2025-03-10T12:00:00+08:00"),
		mustParse(t, "2025-03-10T16:00:00+08:00"), 0))

	// a different area is always free
	assert.True(t, IsAreaAvailable(schedules, 99,
		mustParse(t, "2025-03-10T10:00:00+08:00"),
		mustParse(t, "2025-03-10T14:00:00+08:00"), 0))

	// excluding the conflicting schedule itself (re-checking an edit) passes
	assert.True(t, IsAreaAvailable(schedules, blockA,
		mustParse(t, "2025-03-10T10:00:00+08:00"),
		mustParse(t, "2025-03-10T14:00:00+08:00"), s1.ID))
}

func TestAvailableAreas(t *testing.T) {
	t.Parallel()

	booked := int64(1)
	areas := []*domain.PatrolArea{
		{ID: 1, Legend: "Block A"},
		{ID: 2, Legend: "Block B"},
	}
	schedules := []*domain.Schedule{
		{
			ID:           10,
			StartTime:    mustParse(t, "2025-03-10T08:00:00+08:00"),
			EndTime:      mustParse(t, "2025-03-10T12:00:00+08:00"),
			PatrolAreaID: &booked,
		},
	}

	got := AvailableAreas(areas, schedules,
		mustParse(t, "2025-03-10T10:00:00+08:00"),
		mustParse(t, "2025-03-10T14:00:00+08:00"))

	require.Len(t, got, 1)
	assert.Equal(t, "Block B", got[0].Legend)
}

func TestCheckStart(t *testing.T) {
	t.Parallel()

	s := &domain.Schedule{
		StartTime: mustParse(t, "2025-03-10T08:00:00+08:00"),
		EndTime:   mustParse(t, "2025-03-10T12:00:00+08:00"),
	}
	grace := 30 * time.Minute

	cases := []struct {
		name    string
		now     string
		wantErr bool
	}{
		{"31 minutes early", "2025-03-10T07:29:00+08:00", true},
		{"29 minutes early", "2025-03-10T07:31:00+08:00", false},
		{"exactly 30 minutes early", "2025-03-10T07:30:00+08:00", false},
		{"during the window", "2025-03-10T10:00:00+08:00", false},
		{"exactly at the end", "2025-03-10T12:00:00+08:00", false},
		{"one minute past the end", "2025-03-10T12:01:00+08:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckStart(s, mustParse(t, tc.now), grace)
			if tc.wantErr {
				var twErr *domain.TimeWindowError
				require.Error(t, err)
				assert.True(t, errors.As(err, &twErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckStartable(t *testing.T) {
	t.Parallel()

	scheduleWith := func(id int64, status domain.ExecutionStatus) *domain.Schedule {
		return &domain.Schedule{
			ID: id,
			Executions: []domain.Execution{
				{TanodID: 1, Status: status},
				{TanodID: 2, Status: domain.ExecutionNotStarted},
			},
		}
	}

	cases := []struct {
		name        string
		schedule    *domain.Schedule
		all         []*domain.Schedule
		tanodID     int64
		wantMessage string
	}{
		{
			name:     "not started and no other patrol running",
			schedule: scheduleWith(1, domain.ExecutionNotStarted),
			all:      []*domain.Schedule{scheduleWith(1, domain.ExecutionNotStarted)},
			tanodID:  1,
		},
		{
			name:     "a second start on an overlapping schedule is rejected",
			schedule: scheduleWith(2, domain.ExecutionNotStarted),
			all: []*domain.Schedule{
				scheduleWith(1, domain.ExecutionStarted),
				scheduleWith(2, domain.ExecutionNotStarted),
			},
			tanodID:     1,
			wantMessage: "another patrol is already in progress for this tanod",
		},
		{
			name:        "already started",
			schedule:    scheduleWith(1, domain.ExecutionStarted),
			all:         []*domain.Schedule{scheduleWith(1, domain.ExecutionStarted)},
			tanodID:     1,
			wantMessage: "the patrol is not in a startable state",
		},
		{
			name:        "ended is terminal",
			schedule:    scheduleWith(1, domain.ExecutionEnded),
			all:         []*domain.Schedule{scheduleWith(1, domain.ExecutionEnded)},
			tanodID:     1,
			wantMessage: "the patrol is not in a startable state",
		},
		{
			name:     "another tanod running on the same schedule does not block",
			schedule: scheduleWith(1, domain.ExecutionStarted),
			all:      []*domain.Schedule{scheduleWith(1, domain.ExecutionStarted)},
			tanodID:  2,
		},
		{
			name:        "not assigned",
			schedule:    scheduleWith(1, domain.ExecutionNotStarted),
			all:         []*domain.Schedule{scheduleWith(1, domain.ExecutionNotStarted)},
			tanodID:     9,
			wantMessage: "you are not assigned to this schedule",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckStartable(tc.schedule, tc.all, tc.tanodID)
			if tc.wantMessage == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.wantMessage, err.Error())
			}
		})
	}
}

func TestCheckEndable(t *testing.T) {
	t.Parallel()

	scheduleWith := func(status domain.ExecutionStatus) *domain.Schedule {
		return &domain.Schedule{
			ID:         1,
			Executions: []domain.Execution{{TanodID: 1, Status: status}},
		}
	}

	assert.NoError(t, CheckEndable(scheduleWith(domain.ExecutionStarted), 1))

	err := CheckEndable(scheduleWith(domain.ExecutionNotStarted), 1)
	var conflictErr *domain.ConflictError
	require.Error(t, err)
	assert.True(t, errors.As(err, &conflictErr))

	// ended is terminal, a finished execution cannot end twice
	err = CheckEndable(scheduleWith(domain.ExecutionEnded), 1)
	require.Error(t, err)
	assert.True(t, errors.As(err, &conflictErr))

	assert.Error(t, CheckEndable(scheduleWith(domain.ExecutionStarted), 9))
}

func TestCheckEnd(t *testing.T) {
	t.Parallel()

	s := &domain.Schedule{
		StartTime: mustParse(t, "2025-03-10T08:00:00+08:00"),
		EndTime:   mustParse(t, "2025-03-10T12:00:00+08:00"),
	}

	t.Run("early end without confirmation", func(t *testing.T) {
		err := CheckEnd(s, mustParse(t, "2025-03-10T11:00:00+08:00"), false)
		var confErr *domain.ConfirmationRequiredError
		require.Error(t, err)
		assert.True(t, errors.As(err, &confErr))
	})

	t.Run("early end with confirmation", func(t *testing.T) {
		assert.NoError(t, CheckEnd(s, mustParse(t, "2025-03-10T11:00:00+08:00"), true))
	})

	t.Run("at the scheduled end no confirmation needed", func(t *testing.T) {
		assert.NoError(t, CheckEnd(s, mustParse(t, "2025-03-10T12:00:00+08:00"), false))
	})

	t.Run("past the scheduled end no confirmation needed", func(t *testing.T) {
		assert.NoError(t, CheckEnd(s, mustParse(t, "2025-03-10T13:00:00+08:00"), false))
	})
}
