// Package orchestrator wires together the Job Store, Blob Store, Service
// Registry, Ingest API, and the three periodic tasks (Sender, Getter,
// Cleaner) that make up the orchestrator role (spec.md §2).
package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/config"
	"github.com/rvhonorato/job-orchestrator/internal/httpclient"
	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/api"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/blob"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/registry"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
	"github.com/rvhonorato/job-orchestrator/internal/ticker"
)

const (
	senderInterval  = 500 * time.Millisecond
	getterInterval  = 500 * time.Millisecond
	cleanerInterval = 60 * time.Second
)

// App bundles the running orchestrator's components so cmd/jobctl can
// start and gracefully stop it.
type App struct {
	Server    *http.Server
	Scheduler *ticker.Scheduler
	Logger    *zap.Logger
}

// New builds the orchestrator App from configuration.
func New(cfg config.OrchestratorConfig, logger *zap.Logger) (*App, error) {
	gdb, err := jobdb.New(jobdb.Config{DSN: cfg.DBPath, Logger: logger})
	if err != nil {
		return nil, err
	}

	blobs, err := blob.New(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	repo := repository.NewJobRepository(gdb)
	reg := registry.New(cfg.Services)
	client := httpclient.New(httpclient.DefaultTimeout)

	sched, err := ticker.New(logger.Named("ticker"))
	if err != nil {
		return nil, err
	}

	metricsReg := metrics.New("orchestrator")

	sender := NewSender(repo, reg, client, logger.Named("sender"), metricsReg)
	getter := NewGetter(repo, client, logger.Named("getter"), metricsReg)
	cleaner := NewCleaner(repo, blobs, time.Duration(cfg.MaxAge)*time.Second, logger.Named("cleaner"), metricsReg)

	if err := sched.Every("sender", senderInterval, sender.Tick); err != nil {
		return nil, err
	}
	if err := sched.Every("getter", getterInterval, getter.Tick); err != nil {
		return nil, err
	}
	if err := sched.Every("cleaner", cleanerInterval, cleaner.Tick); err != nil {
		return nil, err
	}

	handler := &api.Handler{
		Repo:     repo,
		Blobs:    blobs,
		Registry: reg,
		Logger:   logger.Named("api"),
	}
	router := api.NewRouter(api.Config{Handler: handler, Metrics: metricsReg, Logger: logger.Named("api")})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  api.ServerTimeout,
		WriteTimeout: api.ServerTimeout,
	}

	return &App{Server: srv, Scheduler: sched, Logger: logger}, nil
}

// Run starts the HTTP server and scheduler, blocking until ctx is cancelled,
// then shuts both down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.Scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Scheduler.Shutdown(); err != nil {
		a.Logger.Warn("scheduler shutdown", zap.Error(err))
	}
	return a.Server.Shutdown(shutdownCtx)
}
