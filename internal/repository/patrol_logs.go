package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

// SavePatrolLogs persists one flushed buffer. The (flush_id, seq) key makes
// re-submission of the same flush a no-op, so a retried end-patrol cannot
// duplicate entries.
func (r *Repository) SavePatrolLogs(scheduleID, tanodID int64, flushID uuid.UUID, entries []domain.LogBufferEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO patrol_logs (schedule_id, tanod_id, flush_id, seq, entry, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (flush_id, seq) DO NOTHING
	`

	for seq, entry := range entries {
		args := []any{scheduleID, tanodID, flushID, seq, entry.Text, entry.CapturedAt}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPatrolLogs(scheduleID, tanodID int64) ([]*domain.PatrolLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, flush_id, seq, entry, captured_at, created_at
		FROM patrol_logs
		WHERE schedule_id = $1 AND tanod_id = $2
		ORDER BY created_at, seq
	`

	rows, err := r.dbpool.QueryContext(ctx, query, scheduleID, tanodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.PatrolLog, 0)
	for rows.Next() {
		log := &domain.PatrolLog{
			ScheduleID: scheduleID,
			TanodID:    tanodID,
		}
		if err := rows.Scan(&log.ID, &log.FlushID, &log.Seq, &log.Entry, &log.CapturedAt, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
