// Package server exposes the HTTP API: criteria submission, lead polling,
// and workbook download.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// TaskStarter launches the background pipeline for a created task.
type TaskStarter interface {
	Start(ctx context.Context, taskID string) <-chan struct{}
}

// Server wires the router, store, and pipeline together.
type Server struct {
	cfg      *config.Config
	store    store.Store
	pipeline TaskStarter
	validate *validator.Validate
	router   chi.Router
}

// New builds the server and its routes.
func New(cfg *config.Config, st store.Store, pipeline TaskStarter) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		pipeline: pipeline,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/submit_criteria", s.handleSubmitCriteria)
	r.Get("/api/get_leads/{taskID}", s.handleGetLeads)
	r.Get("/api/get_leads/{taskID}/export", s.handleExportLeads)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmitCriteria(w http.ResponseWriter, r *http.Request) {
	var criteria model.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(criteria); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	task := &model.Task{
		ID:       uuid.NewString(),
		Status:   model.TaskStatusPending,
		Criteria: criteria,
		Phone:    criteria.Phone,
	}
	if err := s.store.Create(task); err != nil {
		zap.L().Error("server: task create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create task")
		return
	}

	// The worker outlives the request; it must not inherit the request
	// context.
	s.pipeline.Start(context.Background(), task.ID)

	zap.L().Info("server: task accepted", zap.String("task_id", task.ID))
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
}

func (s *Server) handleGetLeads(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := s.store.Get(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := s.store.Get(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != model.TaskStatusLeadsFound {
		writeError(w, http.StatusConflict,
			fmt.Sprintf("task status is %q, no leads to export", task.Status))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leads-%s.xlsx", task.ID))
	if err := export.Write(w, task); err != nil {
		zap.L().Error("server: workbook export failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// validationMessage flattens validator output into a single client-facing
// line naming the first offending field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return "invalid request"
}

// requestLogger logs each request with method, path, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}
