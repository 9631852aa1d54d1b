package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"task-api/internal/apperrors"
	"task-api/internal/logger"
	"task-api/internal/manager"
	"task-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const banner = `Task Manager API is running!

Endpoints:
  GET    /tasks         list all tasks
  GET    /tasks/{id}    get a task
  POST   /tasks         create a task
  PUT    /tasks/{id}    replace a task
  DELETE /tasks/{id}    delete a task
  GET    /metrics       Prometheus metrics
`

func NewRouter(tm *manager.TaskManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", rootHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", listTasksHandler(tm))
		r.Post("/", addTaskHandler(tm))
		r.Get("/{id}", getTaskHandler(tm))
		r.Put("/{id}", updateTaskHandler(tm))
		r.Delete("/{id}", deleteTaskHandler(tm))
	})
	return r
}

// Server - HTTP сервер с корректной остановкой по отмене контекста.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
}

func New(addr string, tm *manager.TaskManager, shutdownTimeout time.Duration) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(tm),
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP сервер запущен", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info(ctx, "HTTP сервер остановлен")
	return nil
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, banner)
}

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := tm.ListTasks(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func getTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		task, err := tm.GetTask(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		task, err := models.DecodeTask(r.Body)
		if err != nil {
			writeError(w, r, apperrors.NewInvalidPayloadError(err))
			return
		}

		created, err := tm.AddTask(r.Context(), task)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/tasks/%d", created.ID))
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		id, err := taskID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		task, err := models.DecodeTaskFields(r.Body)
		if err != nil {
			writeError(w, r, apperrors.NewInvalidPayloadError(err))
			return
		}

		updated, err := tm.UpdateTask(r.Context(), id, task)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := tm.DeleteTask(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeText(w, http.StatusOK, fmt.Sprintf("Task %d deleted successfully", id))
	}
}

func taskID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidIdentifierError(raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	_ = enc.Encode(v)
}

func writeText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(text))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.Error(r.Context(), err, "Ошибка обработки запроса", "method", r.Method, "path", r.URL.Path)
	}
	http.Error(w, apperrors.GetUserMessage(err), code)
}

// requestLogger пишет строку на каждый запрос на уровне debug.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Debug(r.Context(), "HTTP запрос",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
