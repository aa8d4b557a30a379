// Package api implements the worker's Payload API (spec.md §4.6, §6.2),
// built on the same chi middleware chain as the orchestrator's Ingest API.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
	"github.com/rvhonorato/job-orchestrator/internal/worker/workdir"
)

// Handler bundles every dependency the Payload API's routes need.
type Handler struct {
	Store   *store.Store
	WorkDir *workdir.Dir
	Logger  *zap.Logger
}

// Config bundles Handler plus the ambient concerns the router wires in.
type Config struct {
	Handler *Handler
	Metrics *metrics.Registry
	Logger  *zap.Logger
}

// NewRouter builds the worker's HTTP router.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", HealthHandler)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/load", cfg.Handler.Load)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(rate.Limit(5), 10))
		r.Post("/submit", cfg.Handler.Submit)
	})

	r.Get("/retrieve/{id}", cfg.Handler.Retrieve)

	return r
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// ServerTimeout is the conservative HTTP server read/write timeout that
// worker.New applies.
const ServerTimeout = 60 * time.Second
