package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

type fakeSource struct {
	schedules []*domain.Schedule
	users     map[int64]*domain.User
	err       error

	calls []struct{ since, until time.Time }
}

func (f *fakeSource) GetOverduePatrols(since, until time.Time) ([]*domain.Schedule, error) {
	f.calls = append(f.calls, struct{ since, until time.Time }{since, until})
	return f.schedules, f.err
}

func (f *fakeSource) GetUserByID(id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return user, nil
}

type fakePublisher struct {
	published []domain.EventMessage
	err       error
	failAfter int // fail once this many messages have been published
}

func (f *fakePublisher) Publish(msg domain.EventMessage) error {
	if f.err != nil && len(f.published) >= f.failAfter {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func overdueSchedule() *domain.Schedule {
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return &domain.Schedule{
		ID:        7,
		Unit:      "Unit 2",
		StartTime: end.Add(-4 * time.Hour),
		EndTime:   end,
		Executions: []domain.Execution{
			{TanodID: 1, Status: domain.ExecutionStarted},
			{TanodID: 2, Status: domain.ExecutionEnded},
		},
	}
}

func TestScanPublishesOverdueEvents(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		schedules: []*domain.Schedule{overdueSchedule()},
		users: map[int64]*domain.User{
			1: {ID: 1, FullName: "Ramon Dela Cruz"},
			2: {ID: 2, FullName: "Efren Salazar"},
		},
	}
	publisher := &fakePublisher{}

	w := NewWatcher(source, publisher, time.Minute, "captain@brgy-sanroque.ph")
	scanTime := time.Date(2025, 3, 10, 12, 1, 0, 0, time.UTC)
	w.now = func() time.Time { return scanTime }

	since := scanTime.Add(-time.Minute)
	next := w.scan(since)

	assert.Equal(t, scanTime, next)
	require.Len(t, publisher.published, 1)

	msg := publisher.published[0]
	assert.Equal(t, domain.EventPatrolOverdue, msg.Type)
	assert.Equal(t, "captain@brgy-sanroque.ph", msg.To)

	data, ok := msg.Data.(domain.OverdueEventData)
	require.True(t, ok)
	assert.Equal(t, int64(7), data.ScheduleID)
	// only the execution still running is reported
	assert.Equal(t, []string{"Ramon Dela Cruz"}, data.TanodNames)
}

func TestScanKeepsCursorOnSourceError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("db down")}
	w := NewWatcher(source, &fakePublisher{}, time.Minute, "captain@brgy-sanroque.ph")

	since := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next := w.scan(since)

	assert.Equal(t, since, next)
}

func TestScanKeepsCursorOnPublishError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{schedules: []*domain.Schedule{overdueSchedule()}}
	publisher := &fakePublisher{err: errors.New("amqp down")}
	w := NewWatcher(source, publisher, time.Minute, "captain@brgy-sanroque.ph")

	since := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next := w.scan(since)

	assert.Equal(t, since, next)
}

func TestScanAdvancesCursorPastPublishedEvents(t *testing.T) {
	t.Parallel()

	first := overdueSchedule()
	second := overdueSchedule()
	second.ID = 8
	second.StartTime = first.StartTime.Add(time.Hour)
	second.EndTime = first.EndTime.Add(time.Hour)

	source := &fakeSource{schedules: []*domain.Schedule{first, second}}
	publisher := &fakePublisher{err: errors.New("amqp down"), failAfter: 1}
	w := NewWatcher(source, publisher, time.Minute, "captain@brgy-sanroque.ph")

	since := first.EndTime.Add(-2 * time.Hour)
	next := w.scan(since)

	// the first event went out, so the next tick must not repeat it
	require.Len(t, publisher.published, 1)
	assert.Equal(t, first.EndTime, next)
	assert.True(t, next.After(since))
	assert.True(t, next.Before(second.EndTime))
}

func TestStartStopLeavesNoTimerRunning(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	w := NewWatcher(source, &fakePublisher{}, 5*time.Millisecond, "captain@brgy-sanroque.ph")

	stop := w.Start()
	time.Sleep(25 * time.Millisecond)
	stop()

	scans := len(source.calls)
	assert.Greater(t, scans, 0)

	// no further scans after the stop handle returns
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, scans, len(source.calls))
}
