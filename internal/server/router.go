package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/manager"
)

const maxBodyBytes = 1 << 20

type Options struct {
	// AllowedOrigins are the browser origins permitted by CORS. Empty
	// disables cross-origin access entirely.
	AllowedOrigins []string
}

// NewRouter mounts the task API under /api plus /healthz and /metrics.
func NewRouter(tm *manager.TaskManager, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         int((5 * time.Minute).Seconds()),
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Cannot "+r.Method+" "+r.URL.Path)
	})

	r.Get("/healthz", healthHandler(tm))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", listTasksHandler(tm))
			r.Post("/", createTaskHandler(tm))
			r.Get("/{id}", getTaskHandler(tm))
			r.Put("/{id}", updateTaskHandler(tm))
			r.Delete("/{id}", deleteTaskHandler(tm))
		})
		r.Get("/tags", tagsHandler(tm))
	})

	return r
}
