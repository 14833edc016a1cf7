package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/patrol"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/utils"
)

func (h *Handler) CreatePatrolArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Legend      string              `json:"legend" validate:"required"`
		Color       string              `json:"color" validate:"required"`
		Coordinates []domain.Coordinate `json:"coordinates" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidatePatrolAreaFields(req.Legend, req.Coordinates); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	area := &domain.PatrolArea{
		Legend:      req.Legend,
		Color:       req.Color,
		Coordinates: req.Coordinates,
	}

	if err := h.repository.CreatePatrolArea(area); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "patrol_areas_legend_key":
			h.errorResponse(w, r, "a patrol area with this legend already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrol area created", area)
}

func (h *Handler) GetAllPatrolAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.repository.GetAllPatrolAreas()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched patrol areas", areas)
}

func (h *Handler) GetPatrolArea(w http.ResponseWriter, r *http.Request) {
	area := r.Context().Value(PatrolAreaCtx).(*domain.PatrolArea)
	h.successResponse(w, r, "fetched patrol area", area)
}

// GetAvailablePatrolAreas lists the areas free for a candidate time window.
// excludeScheduleID lets the edit form ignore the schedule being edited.
func (h *Handler) GetAvailablePatrolAreas(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		h.errorResponse(w, r, "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		h.errorResponse(w, r, "invalid end time")
		return
	}
	if err := utils.ValidateScheduleWindow(start, end); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	var excludeScheduleID int64
	if raw := r.URL.Query().Get("excludeScheduleID"); raw != "" {
		excludeScheduleID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "invalid excludeScheduleID")
			return
		}
	}

	areas, err := h.repository.GetAllPatrolAreas()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	schedules, err := h.repository.GetAllSchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	available := make([]*domain.PatrolArea, 0, len(areas))
	for _, area := range areas {
		if patrol.IsAreaAvailable(schedules, area.ID, start, end, excludeScheduleID) {
			available = append(available, area)
		}
	}

	h.successResponse(w, r, "fetched available patrol areas", available)
}

func (h *Handler) UpdatePatrolArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Legend      *string             `json:"legend"`
		Color       *string             `json:"color"`
		Coordinates []domain.Coordinate `json:"coordinates"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	area := r.Context().Value(PatrolAreaCtx).(*domain.PatrolArea)

	if req.Legend != nil {
		area.Legend = *req.Legend
	}
	if req.Color != nil {
		area.Color = *req.Color
	}
	if req.Coordinates != nil {
		area.Coordinates = req.Coordinates
	}

	if err := utils.ValidatePatrolAreaFields(area.Legend, area.Coordinates); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdatePatrolArea(area); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "patrol_areas_legend_key":
			h.errorResponse(w, r, "a patrol area with this legend already exists")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "failed to update patrol area, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrol area updated", area)
}

func (h *Handler) DeletePatrolArea(w http.ResponseWriter, r *http.Request) {
	area := r.Context().Value(PatrolAreaCtx).(*domain.PatrolArea)

	if err := h.repository.DeletePatrolArea(area.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "schedules_patrol_area_id_fkey":
			h.errorResponse(w, r, "this patrol area is still assigned to a schedule")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrol area deleted", nil)
}
