package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

// Advisory lock namespaces used to serialize concurrent writers. Area locks
// guard the no-overlap invariant; tanod locks guard the single-active-patrol
// invariant.
const (
	lockNamespaceArea  = 1
	lockNamespaceTanod = 2
)

func (r *Repository) CreateSchedule(s *domain.Schedule) error {
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
		INSERT INTO schedules (unit, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, s.Unit, s.StartTime, s.EndTime).Scan(&s.ID, &s.CreatedAt, &s.Version); err != nil {
		return err
	}

	for i := range s.Executions {
		query = `
			INSERT INTO schedule_tanods (schedule_id, tanod_id)
			VALUES ($1, $2)
			RETURNING status
		`
		if err := tx.QueryRowContext(ctx, query, s.ID, s.Executions[i].TanodID).Scan(&s.Executions[i].Status); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) scanSchedules(ctx context.Context, query string, args ...any) ([]*domain.Schedule, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedulesMap := make(map[int64]*domain.Schedule)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID           int64
			Unit         string
			StartTime    time.Time
			EndTime      time.Time
			PatrolAreaID sql.NullInt64
			CreatedAt    time.Time
			Version      int32

			TanodID   sql.NullInt64
			Status    sql.NullString
			StartedAt sql.NullTime
			EndedAt   sql.NullTime
		}

		dst := []any{
			&row.ID,
			&row.Unit,
			&row.StartTime,
			&row.EndTime,
			&row.PatrolAreaID,
			&row.CreatedAt,
			&row.Version,
			&row.TanodID,
			&row.Status,
			&row.StartedAt,
			&row.EndedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		s, exists := schedulesMap[row.ID]
		if !exists {
			s = &domain.Schedule{
				ID:         row.ID,
				Unit:       row.Unit,
				StartTime:  row.StartTime,
				EndTime:    row.EndTime,
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
				Executions: make([]domain.Execution, 0),
			}
			if row.PatrolAreaID.Valid {
				areaID := row.PatrolAreaID.Int64
				s.PatrolAreaID = &areaID
			}
			schedulesMap[row.ID] = s
			order = append(order, row.ID)
		}

		// a schedule row without tanods only happens on a left join miss
		if !row.TanodID.Valid {
			continue
		}

		exec := domain.Execution{
			TanodID: row.TanodID.Int64,
			Status:  domain.ExecutionStatus(row.Status.String),
		}
		if row.StartedAt.Valid {
			startedAt := row.StartedAt.Time
			exec.StartedAt = &startedAt
		}
		if row.EndedAt.Valid {
			endedAt := row.EndedAt.Time
			exec.EndedAt = &endedAt
		}
		s.Executions = append(s.Executions, exec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	schedules := make([]*domain.Schedule, 0, len(order))
	for _, id := range order {
		schedules = append(schedules, schedulesMap[id])
	}

	return schedules, nil
}

const scheduleColumns = `
	s.id,
	s.unit,
	s.start_time,
	s.end_time,
	s.patrol_area_id,
	s.created_at,
	s.version,
	st.tanod_id,
	st.status,
	st.started_at,
	st.ended_at
`

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		LEFT JOIN schedule_tanods st ON s.id = st.schedule_id
		WHERE s.id = $1
		ORDER BY st.tanod_id
	`

	schedules, err := r.scanSchedules(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, sql.ErrNoRows
	}

	return schedules[0], nil
}

func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		LEFT JOIN schedule_tanods st ON s.id = st.schedule_id
		ORDER BY s.start_time, s.id, st.tanod_id
	`

	return r.scanSchedules(ctx, query)
}

func (r *Repository) GetSchedulesForTanod(tanodID int64) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN schedule_tanods st ON s.id = st.schedule_id
		WHERE s.id IN (SELECT schedule_id FROM schedule_tanods WHERE tanod_id = $1)
		ORDER BY s.start_time, s.id, st.tanod_id
	`

	return r.scanSchedules(ctx, query, tanodID)
}

func (r *Repository) GetSchedulesForArea(areaID int64) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		LEFT JOIN schedule_tanods st ON s.id = st.schedule_id
		WHERE s.patrol_area_id = $1
		ORDER BY s.start_time, s.id, st.tanod_id
	`

	return r.scanSchedules(ctx, query, areaID)
}

// areaFreeForWindow is the authoritative overlap check. It must run inside a
// transaction that already holds the area advisory lock, so two operators
// assigning the same area are serialized.
func (r *Repository) areaFreeForWindow(ctx context.Context, tx *sql.Tx, areaID int64, start, end time.Time, excludeScheduleID int64) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockNamespaceArea, areaID); err != nil {
		return err
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM schedules
			WHERE patrol_area_id = $1
			  AND id <> $2
			  AND start_time < $3
			  AND end_time > $4
		)
	`

	var conflict bool
	if err := tx.QueryRowContext(ctx, query, areaID, excludeScheduleID, end, start).Scan(&conflict); err != nil {
		return err
	}
	if conflict {
		return domain.NewConflictError("the patrol area is already booked for an overlapping time window")
	}

	return nil
}

// UpdateSchedule rewrites the schedule's fields and reconciles its tanod
// membership. Executions of tanods kept in the set are preserved as they are.
// If a patrol area is bound, the window change is re-validated against the
// area's other schedules inside the same transaction.
func (r *Repository) UpdateSchedule(s *domain.Schedule, tanodIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if s.PatrolAreaID != nil {
		if err := r.areaFreeForWindow(ctx, tx, *s.PatrolAreaID, s.StartTime, s.EndTime, s.ID); err != nil {
			return err
		}
	}

	query := `
		UPDATE schedules
		SET
			unit = $1,
			start_time = $2,
			end_time = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	args := []any{s.Unit, s.StartTime, s.EndTime, s.ID, s.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&s.Version); err != nil {
		return err
	}

	query = `
		DELETE FROM schedule_tanods
		WHERE schedule_id = $1 AND tanod_id <> ALL($2::bigint[])
	`
	if _, err := tx.ExecContext(ctx, query, s.ID, int64Array(tanodIDs)); err != nil {
		return err
	}

	for _, tanodID := range tanodIDs {
		query = `
			INSERT INTO schedule_tanods (schedule_id, tanod_id)
			VALUES ($1, $2)
			ON CONFLICT (schedule_id, tanod_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, s.ID, tanodID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// AssignPatrolArea binds a zone to the schedule after the authoritative
// no-overlap check. A ConflictError aborts the assignment and leaves the
// schedule untouched.
func (r *Repository) AssignPatrolArea(s *domain.Schedule, areaID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.areaFreeForWindow(ctx, tx, areaID, s.StartTime, s.EndTime, s.ID); err != nil {
		return err
	}

	query := `
		UPDATE schedules
		SET
			patrol_area_id = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	if err := tx.QueryRowContext(ctx, query, areaID, s.ID, s.Version).Scan(&s.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.PatrolAreaID = &areaID
	return nil
}

func (r *Repository) DeleteSchedule(id int64) error {
	query := `
		DELETE FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// StartPatrol moves the execution to Started, enforcing that the tanod has no
// other Started execution across all schedules. The time-window guard runs in
// the handler before this is called.
func (r *Repository) StartPatrol(scheduleID, tanodID int64, now time.Time) (*domain.Execution, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// serialize start attempts per tanod
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockNamespaceTanod, tanodID); err != nil {
		return nil, err
	}

	var hasActive bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM schedule_tanods WHERE tanod_id = $1 AND status = $2
		)
	`
	if err := tx.QueryRowContext(ctx, query, tanodID, domain.ExecutionStarted).Scan(&hasActive); err != nil {
		return nil, err
	}
	if hasActive {
		return nil, domain.NewConflictError("another patrol is already in progress for this tanod")
	}

	query = `
		UPDATE schedule_tanods
		SET status = $1, started_at = $2
		WHERE schedule_id = $3 AND tanod_id = $4 AND status = $5
		RETURNING status, started_at
	`

	exec := &domain.Execution{TanodID: tanodID}
	var startedAt time.Time
	args := []any{domain.ExecutionStarted, now, scheduleID, tanodID, domain.ExecutionNotStarted}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&exec.Status, &startedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewConflictError("the patrol is not in a startable state")
		}
		return nil, err
	}
	exec.StartedAt = &startedAt

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return exec, nil
}

// EndPatrol moves a Started execution to Ended. The caller flushes the log
// buffer first; this runs only after the flush succeeded.
func (r *Repository) EndPatrol(scheduleID, tanodID int64, now time.Time) (*domain.Execution, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE schedule_tanods
		SET status = $1, ended_at = $2
		WHERE schedule_id = $3 AND tanod_id = $4 AND status = $5
		RETURNING status, started_at, ended_at
	`

	exec := &domain.Execution{TanodID: tanodID}
	var startedAt, endedAt sql.NullTime
	args := []any{domain.ExecutionEnded, now, scheduleID, tanodID, domain.ExecutionStarted}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&exec.Status, &startedAt, &endedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewConflictError("the patrol is not in progress")
		}
		return nil, err
	}
	if startedAt.Valid {
		t := startedAt.Time
		exec.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		exec.EndedAt = &t
	}

	return exec, nil
}

// GetOverduePatrols returns schedules whose window closed inside
// (since, until] while at least one execution is still Started. The watcher
// advances since every scan so each schedule is reported once.
func (r *Repository) GetOverduePatrols(since, until time.Time) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN schedule_tanods st ON s.id = st.schedule_id
		WHERE s.end_time > $1
		  AND s.end_time <= $2
		  AND EXISTS (
			SELECT 1 FROM schedule_tanods
			WHERE schedule_id = s.id AND status = $3
		  )
		ORDER BY s.end_time, s.id, st.tanod_id
	`

	return r.scanSchedules(ctx, query, since, until, domain.ExecutionStarted)
}

// int64Array renders ids as a postgres bigint array literal. The stdlib
// driver interface has no native slice binding.
func int64Array(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
