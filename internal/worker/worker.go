// Package worker wires together the Payload Store, Working Directory,
// Payload API, Script Validator, and the Runner periodic task that make up
// the worker role (spec.md §2).
package worker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/config"
	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	"github.com/rvhonorato/job-orchestrator/internal/ticker"
	"github.com/rvhonorato/job-orchestrator/internal/worker/api"
	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
	"github.com/rvhonorato/job-orchestrator/internal/worker/workdir"
)

const runnerInterval = 500 * time.Millisecond

// App bundles the running worker's components so cmd/jobctl can start and
// gracefully stop it.
type App struct {
	Server    *http.Server
	Scheduler *ticker.Scheduler
	Logger    *zap.Logger
}

// New builds the worker App from configuration.
func New(cfg config.WorkerConfig, logger *zap.Logger) (*App, error) {
	st := store.New()

	wd, err := workdir.New("./work")
	if err != nil {
		return nil, err
	}

	sched, err := ticker.New(logger.Named("ticker"))
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.RunnerTimeout) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultRunnerTimeoutSeconds) * time.Second
	}

	metricsReg := metrics.New("worker")

	runner := NewRunner(st, timeout, logger.Named("runner"), metricsReg)

	if err := sched.Every("runner", runnerInterval, runner.Tick); err != nil {
		return nil, err
	}

	handler := &api.Handler{
		Store:   st,
		WorkDir: wd,
		Logger:  logger.Named("api"),
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
