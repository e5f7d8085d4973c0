// Package server is an in-memory implementation of the task HTTP API, used
// by the serve command and by backend integration tests.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/hfnukal/morotasks/internal/logging"
	"github.com/hfnukal/morotasks/internal/service"
)

var validate = validator.New()

// taskRequest is the body of create and update requests. The id field is
// accepted but not used.
type taskRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text" validate:"max=1024"`
	Completed bool   `json:"completed"`
}

// Server serves the task API from a MemoryRepo.
type Server struct {
	repo   *MemoryRepo
	logger *slog.Logger
}

// New creates a server over repo. A nil logger discards output.
func New(repo *MemoryRepo, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		repo:   repo,
		logger: logger.With(slog.String("component", "server")),
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Get("/completed", s.listCompleted)
		r.Post("/{id}", s.updateTask)
		r.Delete("/{id}", s.deleteTask)
		r.Post("/{id}/complete", s.setCompleted(true))
		r.Post("/{id}/incomplete", s.setCompleted(false))
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.repo.List(r.Context(), false))
}

func (s *Server) listCompleted(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.repo.List(r.Context(), true))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	t := s.repo.Create(r.Context(), req.Text, req.Completed)
	s.logger.Debug("task created", "id", t.ID.String())
	s.respondJSON(w, http.StatusCreated, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	t, err := s.repo.Update(r.Context(), chi.URLParam(r, "id"), req.Text, req.Completed)
	if err != nil {
		s.respondRepoError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.respondRepoError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// setCompleted takes the flag from the path; the request body is ignored.
func (s *Server) setCompleted(completed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.repo.SetCompleted(r.Context(), chi.URLParam(r, "id"), completed)
		if err != nil {
			s.respondRepoError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, t)
	}
}

func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request) (taskRequest, bool) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request format")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "text is too long")
		return req, false
	}
	return req, true
}

func (s *Server) respondRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		s.respondError(w, r, http.StatusNotFound, "task not found")
		return
	}
	s.logger.Error("repository error", "error", err)
	s.respondError(w, r, http.StatusInternalServerError, "internal error")
}
