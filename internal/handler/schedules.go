package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/utils"
)

// withTemporalStatus stamps the derived Upcoming/Ongoing/Completed status onto
// schedules right before they leave the API. The status is never stored.
func withTemporalStatus(schedules ...*domain.Schedule) {
	now := time.Now()
	for _, s := range schedules {
		s.Status = s.TemporalStatusAt(now)
	}
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit      string    `json:"unit" validate:"required"`
		StartTime time.Time `json:"startTime" validate:"required"`
		EndTime   time.Time `json:"endTime" validate:"required"`
		TanodIDs  []int64   `json:"tanodIDs" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateUnit(req.Unit); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateScheduleWindow(req.StartTime, req.EndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateTanodIDs(req.TanodIDs); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	for _, tanodID := range req.TanodIDs {
		user, err := h.repository.GetUserByID(tanodID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "one of the assigned tanods does not exist")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if user.Role != domain.RoleTanod || !user.IsActive {
			h.errorResponse(w, r, "only active tanods can be assigned to a schedule")
			return
		}
	}

	s := &domain.Schedule{
		Unit:      req.Unit,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	for _, tanodID := range req.TanodIDs {
		s.Executions = append(s.Executions, domain.Execution{TanodID: tanodID})
	}

	if err := h.repository.CreateSchedule(s); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	withTemporalStatus(s)
	h.successResponse(w, r, "schedule created", s)
}

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repository.GetAllSchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	withTemporalStatus(schedules...)
	h.successResponse(w, r, "fetched schedules", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	withTemporalStatus(s)
	h.successResponse(w, r, "fetched schedule", s)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit      *string    `json:"unit"`
		StartTime *time.Time `json:"startTime"`
		EndTime   *time.Time `json:"endTime"`
		TanodIDs  []int64    `json:"tanodIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if req.Unit != nil {
		s.Unit = *req.Unit
	}
	if req.StartTime != nil {
		s.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		s.EndTime = *req.EndTime
	}

	tanodIDs := s.TanodIDs()
	if req.TanodIDs != nil {
		tanodIDs = req.TanodIDs
	}

	if err := utils.ValidateUnit(s.Unit); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateScheduleWindow(s.StartTime, s.EndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateTanodIDs(tanodIDs); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateSchedule(s, tanodIDs); err != nil {
		var conflictErr *domain.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, conflictErr.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "failed to update schedule, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// re-read so the response carries the reconciled executions
	updated, err := h.repository.GetScheduleByID(s.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	withTemporalStatus(updated)
	h.successResponse(w, r, "schedule updated", updated)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if err := h.repository.DeleteSchedule(s.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule deleted", nil)
}

// GetScheduleMembers resolves the schedule's tanod IDs into user records for
// the roster view.
func (h *Handler) GetScheduleMembers(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	members := make([]*domain.User, 0, len(s.Executions))
	for _, exec := range s.Executions {
		user, err := h.repository.GetUserByID(exec.TanodID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// tolerate a tanod deleted after assignment
				continue
			default:
				h.internalServerError(w, r, err)
				return
			}
		}
		members = append(members, user)
	}

	h.successResponse(w, r, "fetched schedule members", members)
}

func (h *Handler) AssignPatrolArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatrolAreaID int64 `json:"patrolAreaID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if _, err := h.repository.GetPatrolAreaByID(req.PatrolAreaID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "patrol area not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.AssignPatrolArea(s, req.PatrolAreaID); err != nil {
		var conflictErr *domain.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, conflictErr.Error())
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "failed to assign patrol area, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	withTemporalStatus(s)
	h.successResponse(w, r, "patrol area assigned", s)
}

// GetMySchedules lists the schedules the logged-in tanod is assigned to.
func (h *Handler) GetMySchedules(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	schedules, err := h.repository.GetSchedulesForTanod(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	withTemporalStatus(schedules...)
	h.successResponse(w, r, "fetched my schedules", schedules)
}
