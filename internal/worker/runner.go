package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/archive"
	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	workerexec "github.com/rvhonorato/job-orchestrator/internal/worker/exec"
	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
	"github.com/rvhonorato/job-orchestrator/internal/worker/validator"
)

// Runner executes Prepared payloads to Completed/Failed/Invalid, per
// spec.md §4.5. Payloads are processed sequentially within a tick —
// "serialization" is the contract, horizontal scale comes from running
// more worker processes (spec.md §4.5, §5).
type Runner struct {
	store   *store.Store
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewRunner builds a Runner. metrics may be nil, in which case no counters
// are recorded.
func NewRunner(st *store.Store, timeout time.Duration, logger *zap.Logger, metricsReg *metrics.Registry) *Runner {
	return &Runner{store: st, timeout: timeout, logger: logger, metrics: metricsReg}
}

// Tick processes every currently Prepared payload to completion before
// returning — ticks do not stack (spec.md §5), enforced by the scheduler's
// singleton mode.
func (r *Runner) Tick(ctx context.Context) {
	start := time.Now()
	prepared := r.store.ListByStatus(store.Prepared)
	for _, p := range prepared {
		r.run(ctx, p)
	}
	if r.metrics != nil {
		r.metrics.TickDuration.WithLabelValues("runner").Observe(time.Since(start).Seconds())
	}
}

func (r *Runner) run(ctx context.Context, p store.Payload) {
	script, err := os.ReadFile(filepath.Join(p.Loc, "run.sh"))
	if err != nil {
		r.logger.Error("runner: reading run.sh", zap.Error(err), zap.Uint("payload_id", p.ID))
		r.finish(p.ID, store.Invalid)
		return
	}

	if reason := validator.Validate(script); reason != "" {
		r.logger.Warn("runner: rejected by validator", zap.String("reason", reason), zap.Uint("payload_id", p.ID))
		r.finish(p.ID, store.Invalid)
		return
	}

	r.store.SetStatus(p.ID, store.Running)
	if r.metrics != nil {
		r.metrics.PayloadTransitions.WithLabelValues(string(store.Running)).Inc()
	}

	result, err := workerexec.Run(ctx, p.Loc, r.timeout)
	if err != nil && err != workerexec.ErrTimeout {
		r.logger.Error("runner: executing run.sh", zap.Error(err), zap.Uint("payload_id", p.ID))
	}

	archivePath := filepath.Join(p.Loc, archive.ArchiveName)
	if archErr := archive.Dir(p.Loc, archivePath); archErr != nil {
		r.logger.Error("runner: archiving result", zap.Error(archErr), zap.Uint("payload_id", p.ID))
		r.finish(p.ID, store.Failed)
		return
	}

	if result.TimedOut || result.ExitCode != 0 {
		r.finish(p.ID, store.Failed)
		return
	}
	r.finish(p.ID, store.Completed)
}

func (r *Runner) finish(id uint, status store.Status) {
	r.store.SetStatus(id, status)
	if r.metrics != nil {
		r.metrics.PayloadTransitions.WithLabelValues(string(status)).Inc()
	}
}
