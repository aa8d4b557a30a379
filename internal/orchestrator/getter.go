package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/archive"
	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

// Getter pulls completed results from workers, per spec.md §4.3.
type Getter struct {
	repo    repository.JobRepository
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewGetter builds a Getter. metricsReg may be nil, in which case no
// counters are recorded.
func NewGetter(repo repository.JobRepository, client *http.Client, logger *zap.Logger, metricsReg *metrics.Registry) *Getter {
	return &Getter{repo: repo, client: client, logger: logger, metrics: metricsReg}
}

// Tick runs one Getter iteration over every Submitted/Unknown job with a
// recorded dest_id.
func (g *Getter) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		if g.metrics != nil {
			g.metrics.TickDuration.WithLabelValues("getter").Observe(time.Since(start).Seconds())
		}
	}()

	jobs, err := g.repo.ListSubmittedOrUnknown()
	if err != nil {
		g.logger.Error("getter: listing jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		g.poll(ctx, job)
	}
}

func (g *Getter) poll(ctx context.Context, job jobdb.Job) {
	url := fmt.Sprintf("%s/%s", job.DestServiceURL, job.DestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		g.logger.Error("getter: building request", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.toUnknown(job)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		g.complete(job, resp.Body)
	case http.StatusAccepted:
		// still executing; leave status unchanged
	case http.StatusNoContent:
		g.toUnknown(job)
	case http.StatusBadRequest:
		g.fail(job, jobdb.FailReasonBadInput)
	case http.StatusGone:
		g.fail(job, jobdb.FailReasonExec)
	default:
		g.toUnknown(job)
	}
}

func (g *Getter) complete(job jobdb.Job, body io.Reader) {
	dest := filepath.Join(job.Loc, archive.ArchiveName)
	tmp := dest + ".download"

	f, err := os.Create(tmp)
	if err != nil {
		g.logger.Error("getter: creating archive file", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		g.logger.Error("getter: writing archive", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		g.logger.Error("getter: closing archive", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		g.logger.Error("getter: renaming archive into place", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}

	if _, err := g.repo.TransitionToCompleted(job.ID, job.Status); err != nil {
		g.logger.Error("getter: recording completion", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}
	g.record(jobdb.JobCompleted)
}

func (g *Getter) fail(job jobdb.Job, reason jobdb.FailReason) {
	if _, err := g.repo.MarkFailed(job.ID, job.Status, reason); err != nil {
		g.logger.Error("getter: marking job failed", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}
	g.record(jobdb.JobFailed)
}

func (g *Getter) toUnknown(job jobdb.Job) {
	if job.Status == jobdb.JobUnknown {
		return
	}
	if _, err := g.repo.TransitionToUnknown(job.ID); err != nil {
		g.logger.Error("getter: marking job unknown", zap.Error(err), zap.Uint("job_id", job.ID))
		return
	}
	g.record(jobdb.JobUnknown)
}

func (g *Getter) record(status jobdb.JobStatus) {
	if g.metrics != nil {
		g.metrics.JobTransitions.WithLabelValues(string(status)).Inc()
	}
}
