package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

func (r *Repository) CreatePatrolArea(area *domain.PatrolArea) error {
	coordinates, err := json.Marshal(area.Coordinates)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO patrol_areas (legend, color, coordinates)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, area.Legend, area.Color, coordinates).Scan(&area.ID, &area.CreatedAt, &area.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPatrolAreaByID(id int64) (*domain.PatrolArea, error) {
	query := `
		SELECT legend, color, coordinates, created_at, version
		FROM patrol_areas WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	area := &domain.PatrolArea{
		ID: id,
	}

	var coordinates []byte
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&area.Legend, &area.Color, &coordinates, &area.CreatedAt, &area.Version); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(coordinates, &area.Coordinates); err != nil {
		return nil, err
	}

	return area, nil
}

func (r *Repository) GetAllPatrolAreas() ([]*domain.PatrolArea, error) {
	query := `
		SELECT id, legend, color, coordinates, created_at, version
		FROM patrol_areas ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]*domain.PatrolArea, 0)
	for rows.Next() {
		area := &domain.PatrolArea{}
		var coordinates []byte
		if err := rows.Scan(&area.ID, &area.Legend, &area.Color, &coordinates, &area.CreatedAt, &area.Version); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(coordinates, &area.Coordinates); err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return areas, nil
}

func (r *Repository) UpdatePatrolArea(area *domain.PatrolArea) error {
	coordinates, err := json.Marshal(area.Coordinates)
	if err != nil {
		return err
	}

	query := `
		UPDATE patrol_areas
		SET
			legend = $1,
			color = $2,
			coordinates = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{area.Legend, area.Color, coordinates, area.ID, area.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&area.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePatrolArea(id int64) error {
	query := `
		DELETE FROM patrol_areas WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
