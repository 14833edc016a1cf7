package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/redis/go-redis/v9"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/config"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/logbuffer"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/queue"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	publisher   *queue.Publisher
	redisClient *redis.Client
	logBuffer   *logbuffer.Buffer

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, publisher *queue.Publisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		publisher:   publisher,
		redisClient: rdb,
		logBuffer:   logbuffer.NewBuffer(rdb),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a valid bearer token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/patrol-areas", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreatePatrolArea)
			r.Get("/", h.GetAllPatrolAreas)
			r.Get("/available", h.GetAvailablePatrolAreas)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.patrolArea)
				r.Get("/", h.GetPatrolArea)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdatePatrolArea)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeletePatrolArea)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateSchedule)
			r.Get("/", h.GetAllSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedule)
				r.Get("/", h.GetSchedule)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateSchedule)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteSchedule)
				r.Get("/members", h.GetScheduleMembers)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Put("/patrol-area", h.AssignPatrolArea)

				r.Group(func(r chi.Router) {
					r.Use(h.myInfo)
					r.Use(h.RequiredRole([]domain.Role{domain.RoleTanod}))
					r.Put("/start-patrol", h.StartPatrol)
					r.Put("/end-patrol", h.EndPatrol)
					r.Route("/patrol-logs", func(r chi.Router) {
						r.Post("/", h.AppendPatrolLog)
						r.Get("/", h.GetBufferedPatrolLogs)
						r.Delete("/{index}", h.RemovePatrolLog)
					})
				})

				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/saved-patrol-logs", h.GetSavedPatrolLogs)
			})
		})

		r.With(h.myInfo).Get("/tanod-schedules", h.GetMySchedules)
	})
}
