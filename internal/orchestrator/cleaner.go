package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/blob"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

// Cleaner reclaims disk for jobs older than MaxAge, per spec.md §4.4.
type Cleaner struct {
	repo    repository.JobRepository
	blobs   *blob.Store
	maxAge  time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewCleaner builds a Cleaner. metricsReg may be nil, in which case no
// counters are recorded.
func NewCleaner(repo repository.JobRepository, blobs *blob.Store, maxAge time.Duration, logger *zap.Logger, metricsReg *metrics.Registry) *Cleaner {
	return &Cleaner{repo: repo, blobs: blobs, maxAge: maxAge, logger: logger, metrics: metricsReg}
}

// Tick deletes loc and marks Cleaned for every job created at or before
// now-maxAge, regardless of current status.
func (c *Cleaner) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.TickDuration.WithLabelValues("cleaner").Observe(time.Since(start).Seconds())
		}
	}()

	cutoff := time.Now().Add(-c.maxAge)
	jobs, err := c.repo.ListForCleanup(cutoff)
	if err != nil {
		c.logger.Error("cleaner: listing jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		if err := c.blobs.Remove(job.Loc); err != nil {
			c.logger.Error("cleaner: removing blob", zap.Error(err), zap.Uint("job_id", job.ID))
			continue
		}
		if err := c.repo.MarkCleaned(job.ID); err != nil {
			c.logger.Error("cleaner: marking job cleaned", zap.Error(err), zap.Uint("job_id", job.ID))
			continue
		}
		if c.metrics != nil {
			c.metrics.JobTransitions.WithLabelValues(string(jobdb.JobCleaned)).Inc()
		}
	}
}
