// Package api implements the orchestrator's Ingest API (spec.md §4.1,
// §6.1), adapted from the teacher's internal/api/router.go — the
// RequestID/RealIP/RequestLogger/Recoverer middleware chain is kept; its
// JWT auth middleware is dropped (spec.md Non-goal: authn/authz).
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/blob"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/registry"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

// Handler bundles every dependency the Ingest API's routes need.
type Handler struct {
	Repo     repository.JobRepository
	Blobs    *blob.Store
	Registry *registry.Registry
	Logger   *zap.Logger
}

// Config bundles Handler plus the ambient concerns the router wires in.
type Config struct {
	Handler *Handler
	Metrics *metrics.Registry
	Logger  *zap.Logger
}

// NewRouter builds the orchestrator's HTTP router.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", HealthHandler)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(rate.Limit(5), 10))
		r.Post("/upload", cfg.Handler.Upload)
	})

	r.Head("/download/{id}", cfg.Handler.Download)
	r.Get("/download/{id}", cfg.Handler.Download)

	return r
}

// ServerTimeout is the conservative HTTP server read/write timeout that
// orchestrator.New applies.
const ServerTimeout = 60 * time.Second
