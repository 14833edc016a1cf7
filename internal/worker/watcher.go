// Package worker holds the window watcher: a periodic task that notices
// schedules whose time window closed while patrols were still running.
package worker

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

// OverdueSource is the slice of the repository the watcher needs.
type OverdueSource interface {
	GetOverduePatrols(since, until time.Time) ([]*domain.Schedule, error)
	GetUserByID(id int64) (*domain.User, error)
}

// EventPublisher is the slice of the queue publisher the watcher needs.
type EventPublisher interface {
	Publish(msg domain.EventMessage) error
}

type Watcher struct {
	source     OverdueSource
	publisher  EventPublisher
	interval   time.Duration
	adminEmail string
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(source OverdueSource, publisher EventPublisher, interval time.Duration, adminEmail string) *Watcher {
	return &Watcher{
		source:     source,
		publisher:  publisher,
		interval:   interval,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

// Start launches the periodic scan and returns a stop handle. The handle
// blocks until the scan goroutine has exited, so no timer survives teardown.
func (w *Watcher) Start() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		lastScan := w.now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lastScan = w.scan(lastScan)
			}
		}
	}()

	return func() {
		w.cancel()
		w.wg.Wait()
	}
}

// scan reports schedules whose window closed inside (since, now] with
// executions still Started, then advances the scan cursor. On a failure the
// cursor only advances past end times whose schedules were all published, so
// the next tick retries the failed schedule without repeating the earlier
// ones. Schedules sharing the failed end time may be republished; the cursor
// cannot split a (since, until] range mid-instant.
func (w *Watcher) scan(since time.Time) time.Time {
	now := w.now()

	overdue, err := w.source.GetOverduePatrols(since, now)
	if err != nil {
		slog.Error("window watcher scan failed", "error", err)
		return since
	}

	cursor := since
	var prevEnd time.Time
	for _, s := range overdue {
		// rows arrive ordered by end_time
		if !prevEnd.IsZero() && s.EndTime.After(prevEnd) {
			cursor = prevEnd
		}
		prevEnd = s.EndTime

		names := make([]string, 0, len(s.Executions))
		for _, exec := range s.Executions {
			if exec.Status != domain.ExecutionStarted {
				continue
			}
			if tanod, err := w.source.GetUserByID(exec.TanodID); err == nil {
				names = append(names, tanod.FullName)
			} else {
				names = append(names, strconv.FormatInt(exec.TanodID, 10))
			}
		}

		msg := domain.EventMessage{
			Type: domain.EventPatrolOverdue,
			To:   w.adminEmail,
			Data: domain.OverdueEventData{
				ScheduleID: s.ID,
				Unit:       s.Unit,
				TanodNames: names,
				EndedAt:    s.EndTime,
			},
		}
		if err := w.publisher.Publish(msg); err != nil {
			slog.Error("failed to publish overdue patrol event", "scheduleID", s.ID, "error", err)
			// the schedule is picked up again next tick
			return cursor
		}

		slog.Info("patrol window closed with executions still running", "scheduleID", s.ID, "unit", s.Unit)
	}

	return now
}
