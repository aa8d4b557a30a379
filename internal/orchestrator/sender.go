package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/metrics"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/registry"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

// submitResponse is the worker's /submit response body (spec.md §6.2).
type submitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Loc    string `json:"loc"`
}

// Sender promotes Queued jobs to Processing (quota-checked) then to
// Submitted (dispatched to the worker), per spec.md §4.2.
type Sender struct {
	repo     repository.JobRepository
	registry *registry.Registry
	client   *http.Client
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// NewSender builds a Sender. metricsReg may be nil, in which case no
// counters are recorded.
func NewSender(repo repository.JobRepository, reg *registry.Registry, client *http.Client, logger *zap.Logger, metricsReg *metrics.Registry) *Sender {
	return &Sender{repo: repo, registry: reg, client: client, logger: logger, metrics: metricsReg}
}

// Tick runs one Sender iteration: FIFO over all Queued jobs, quota-checked
// promotion to Processing and dispatch, then a pass over any job still
// Processing with no dest_id — i.e. one a prior tick (or a prior process,
// before a crash) promoted but never finished dispatching — which gets
// redispatched exactly as if it had just been promoted (spec.md §4.2
// Idempotence note).
func (s *Sender) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.TickDuration.WithLabelValues("sender").Observe(time.Since(start).Seconds())
		}
	}()

	s.promoteQueued(ctx)
	s.redispatchStaleProcessing(ctx)
}

func (s *Sender) promoteQueued(ctx context.Context) {
	jobs, err := s.repo.ListQueuedFIFO()
	if err != nil {
		s.logger.Error("sender: listing queued jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		svc, ok := s.registry.Lookup(job.Service)
		if !ok {
			// Service existed at submission time (validated by Ingest API)
			// but the registry is immutable, so this should not happen;
			// guard anyway rather than panic.
			s.logger.Warn("sender: unregistered service for queued job", zap.Uint("job_id", job.ID), zap.String("service", job.Service))
			continue
		}

		inFlight, err := s.repo.CountInFlight(job.UserID, job.Service)
		if err != nil {
			s.logger.Error("sender: counting in-flight", zap.Error(err), zap.Uint("job_id", job.ID))
			continue
		}
		s.recordInFlight(job.UserID, job.Service, inFlight)
		if int(inFlight) >= svc.RunsPerUser {
			continue
		}

		ok, err = s.repo.TransitionToProcessing(job.ID)
		if err != nil {
			s.logger.Error("sender: promoting to processing", zap.Error(err), zap.Uint("job_id", job.ID))
			continue
		}
		if !ok {
			// Lost a race to another tick/process; skip silently.
			continue
		}
		s.record(jobdb.JobProcessing)

		s.dispatch(ctx, job.ID, job.Loc, svc)
	}
}

// redispatchStaleProcessing re-submits every Processing job with no dest_id.
// These bypass the quota check and TransitionToProcessing: the job already
// holds its Processing slot, so re-promoting it would double count it
// against its own quota.
func (s *Sender) redispatchStaleProcessing(ctx context.Context) {
	jobs, err := s.repo.ListStaleProcessing()
	if err != nil {
		s.logger.Error("sender: listing stale processing jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		svc, ok := s.registry.Lookup(job.Service)
		if !ok {
			s.logger.Warn("sender: unregistered service for stale processing job", zap.Uint("job_id", job.ID), zap.String("service", job.Service))
			continue
		}
		s.dispatch(ctx, job.ID, job.Loc, svc)
	}
}

func (s *Sender) dispatch(ctx context.Context, jobID uint, loc string, svc registry.Service) {
	body, contentType, err := buildMultipart(loc)
	if err != nil {
		s.logger.Error("sender: building multipart body", zap.Error(err), zap.Uint("job_id", jobID))
		s.fail(jobID)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.SubmitURL, body)
	if err != nil {
		s.logger.Error("sender: building request", zap.Error(err), zap.Uint("job_id", jobID))
		s.fail(jobID)
		return
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("sender: dispatch failed", zap.Error(err), zap.Uint("job_id", jobID))
		s.fail(jobID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		s.logger.Warn("sender: dispatch non-2xx", zap.Int("status", resp.StatusCode), zap.Uint("job_id", jobID))
		s.fail(jobID)
		return
	}

	var parsed submitResponse
	if err := decodeJSON(resp.Body, &parsed); err != nil || parsed.ID == "" {
		s.logger.Warn("sender: unparsable submit response", zap.Error(err), zap.Uint("job_id", jobID))
		s.fail(jobID)
		return
	}

	if _, err := s.repo.TransitionToSubmitted(jobID, parsed.ID, svc.RetrieveURL); err != nil {
		s.logger.Error("sender: recording submission", zap.Error(err), zap.Uint("job_id", jobID))
		return
	}
	s.record(jobdb.JobSubmitted)
}

func (s *Sender) fail(jobID uint) {
	if _, err := s.repo.MarkFailed(jobID, jobdb.JobProcessing, jobdb.FailReasonExec); err != nil {
		s.logger.Error("sender: marking job failed", zap.Error(err), zap.Uint("job_id", jobID))
		return
	}
	s.record(jobdb.JobFailed)
}

func (s *Sender) record(status jobdb.JobStatus) {
	if s.metrics != nil {
		s.metrics.JobTransitions.WithLabelValues(string(status)).Inc()
	}
}

func (s *Sender) recordInFlight(userID int, service string, count int64) {
	if s.metrics != nil {
		s.metrics.InFlightByQuota.WithLabelValues(strconv.Itoa(userID), service).Set(float64(count))
	}
}

// buildMultipart packages every file directly under loc into a multipart
// body using the "file" field name, matching the worker's /submit contract.
func buildMultipart(loc string) (io.Reader, string, error) {
	entries, err := os.ReadDir(loc)
	if err != nil {
		return nil, "", fmt.Errorf("reading job dir: %w", err)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := addMultipartFile(w, filepath.Join(loc, e.Name()), e.Name()); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func addMultipartFile(w *multipart.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("creating form file %s: %w", name, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copying %s: %w", name, err)
	}
	return nil
}
