package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-api/internal/manager"
	"todo-api/internal/validation"
)

// Deps - всё, что нужно роутеру; собирается в main или в тестах
type Deps struct {
	Auth      *manager.AuthManager
	Tasks     *manager.TaskManager
	Tags      *manager.TagManager
	Validator *validation.Validator

	// Health проверяет хранилище для /healthz
	Health func(ctx context.Context) error

	Registry    *prometheus.Registry
	CORSOrigins []string
}

type Server struct {
	auth      *manager.AuthManager
	tasks     *manager.TaskManager
	tags      *manager.TagManager
	validator *validation.Validator
	health    func(ctx context.Context) error
	metrics   *httpMetrics
}

func NewRouter(d Deps) *chi.Mux {
	s := &Server{
		auth:      d.Auth,
		tasks:     d.Tasks,
		tags:      d.Tags,
		validator: d.Validator,
		health:    d.Health,
		metrics:   newHTTPMetrics(d.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverJSON)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.metrics.middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "method not allowed"})
	})

	r.Get("/healthz", s.handleHealth)
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Post("/auth/sign-in", s.handleSignIn)
		r.Post("/auth/refresh", s.handleRefresh)

		r.Get("/tags", s.handleListTags)
		r.Post("/tags", s.handleCreateTag)
		r.Get("/tags/{id}", s.handleGetTag)
		r.Delete("/tags/{id}", s.handleDeleteTag)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/users/me", s.handleMe)

			r.Post("/tasks", s.handleCreateTask)
			r.Get("/tasks/user", s.handleListTasks)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
