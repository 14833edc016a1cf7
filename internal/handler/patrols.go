package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/patrol"
)

// publishPatrolEvent notifies the admin mailbox about a patrol transition.
// Publish failures are logged, not surfaced: the transition already committed
// and must not be reported as failed.
func (h *Handler) publishPatrolEvent(eventType string, s *domain.Schedule, tanod *domain.User, at time.Time) {
	areaLegend := ""
	if s.PatrolAreaID != nil {
		if area, err := h.repository.GetPatrolAreaByID(*s.PatrolAreaID); err == nil {
			areaLegend = area.Legend
		}
	}

	event := domain.EventMessage{
		Type: eventType,
		To:   h.config.Email.AdminAddress,
		Data: domain.PatrolEventData{
			ScheduleID: s.ID,
			Unit:       s.Unit,
			TanodName:  tanod.FullName,
			AreaLegend: areaLegend,
			At:         at,
		},
	}

	if err := h.publisher.Publish(event); err != nil {
		slog.Error("failed to publish patrol event", "type", eventType, "scheduleID", s.ID, "error", err)
	}
}

func (h *Handler) StartPatrol(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	mySchedules, err := h.repository.GetSchedulesForTanod(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := patrol.CheckStartable(s, mySchedules, myInfo.ID); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	now := time.Now()
	grace := time.Duration(h.config.Patrol.StartGraceMinutes) * time.Minute
	if err := patrol.CheckStart(s, now, grace); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	exec, err := h.repository.StartPatrol(s.ID, myInfo.ID, now)
	if err != nil {
		var conflictErr *domain.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, conflictErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishPatrolEvent(domain.EventPatrolStarted, s, myInfo, now)

	h.successResponse(w, r, "patrol started", exec)
}

func (h *Handler) EndPatrol(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := patrol.CheckEndable(s, myInfo.ID); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	now := time.Now()
	if err := patrol.CheckEnd(s, now, req.Confirmed); err != nil {
		var confirmErr *domain.ConfirmationRequiredError
		switch {
		case errors.As(err, &confirmErr):
			h.writeJSON(w, r, http.StatusOK, Response{
				Success: false,
				Message: "the scheduled end has not been reached, confirm to end the patrol early",
				Data:    map[string]any{"confirmationRequired": true},
			})
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// the buffered logs must be safely stored before the execution can end
	err := h.logBuffer.Flush(r.Context(), s.ID, myInfo.ID, func(flushID uuid.UUID, entries []domain.LogBufferEntry) error {
		return h.repository.SavePatrolLogs(s.ID, myInfo.ID, flushID, entries)
	})
	if err != nil {
		var uploadErr *domain.UploadError
		switch {
		case errors.As(err, &uploadErr):
			h.errorResponse(w, r, "failed to save the patrol logs, the patrol stays in progress, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ended, err := h.repository.EndPatrol(s.ID, myInfo.ID, now)
	if err != nil {
		var conflictErr *domain.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, conflictErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishPatrolEvent(domain.EventPatrolEnded, s, myInfo, now)

	h.successResponse(w, r, "patrol ended", ended)
}

func (h *Handler) AppendPatrolLog(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exec := s.ExecutionFor(myInfo.ID)
	if exec == nil {
		h.errorResponse(w, r, "you are not assigned to this schedule")
		return
	}
	if exec.Status != domain.ExecutionStarted {
		h.errorResponse(w, r, "patrol logs can only be added while the patrol is in progress")
		return
	}

	if err := h.logBuffer.Append(r.Context(), s.ID, myInfo.ID, req.Text, time.Now()); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrol log added", nil)
}

func (h *Handler) GetBufferedPatrolLogs(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	entries, err := h.logBuffer.Entries(r.Context(), s.ID, myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched patrol logs", entries)
}

func (h *Handler) RemovePatrolLog(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	indexParam := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexParam)
	if err != nil {
		h.errorResponse(w, r, "invalid log entry index")
		return
	}

	if err := h.logBuffer.Remove(r.Context(), s.ID, myInfo.ID, index); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrol log removed", nil)
}

// GetSavedPatrolLogs returns the flushed logs of one tanod's execution for the
// admin review view.
func (h *Handler) GetSavedPatrolLogs(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	tanodID, err := strconv.ParseInt(r.URL.Query().Get("tanodID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid tanodID")
		return
	}

	logs, err := h.repository.GetPatrolLogs(s.ID, tanodID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched saved patrol logs", logs)
}
