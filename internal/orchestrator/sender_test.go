package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/config"
	"github.com/rvhonorato/job-orchestrator/internal/httpclient"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/registry"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

func newTestRepoForSender(t *testing.T) repository.JobRepository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.sqlite")
	gdb, err := jobdb.New(jobdb.Config{DSN: dsn, Logger: zap.NewNop()})
	require.NoError(t, err)
	return repository.NewJobRepository(gdb)
}

func TestSender_DispatchesToSubmitted(t *testing.T) {
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","status":"Prepared","loc":"/work/1"}`))
	}))
	defer worker.Close()

	repo := newTestRepoForSender(t)
	reg := registry.New([]config.ServiceConfig{
		{Name: "example", SubmitURL: worker.URL, RetrieveURL: worker.URL, RunsPerUser: 5},
	})

	loc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(loc, "run.sh"), []byte("echo hi"), 0o644))

	job := &jobdb.Job{UserID: 1, Service: "example", Status: jobdb.JobQueued, Loc: loc}
	require.NoError(t, repo.Create(job))

	sender := NewSender(repo, reg, httpclient.New(0), zap.NewNop(), nil)
	sender.Tick(context.Background())

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	require.Equal(t, jobdb.JobSubmitted, got.Status)
	require.Equal(t, "1", got.DestID)
}

func TestSender_WorkerDown_TransitionsToFailed(t *testing.T) {
	repo := newTestRepoForSender(t)
	reg := registry.New([]config.ServiceConfig{
		{Name: "example", SubmitURL: "http://127.0.0.1:1", RetrieveURL: "http://127.0.0.1:1", RunsPerUser: 5},
	})

	loc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(loc, "run.sh"), []byte("echo hi"), 0o644))

	job := &jobdb.Job{UserID: 1, Service: "example", Status: jobdb.JobQueued, Loc: loc}
	require.NoError(t, repo.Create(job))

	sender := NewSender(repo, reg, httpclient.New(0), zap.NewNop(), nil)
	sender.Tick(context.Background())

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	require.Equal(t, jobdb.JobFailed, got.Status)
	require.Equal(t, jobdb.FailReasonExec, got.FailReason)
}

func TestSender_RespectsQuota(t *testing.T) {
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","status":"Prepared","loc":"/work/1"}`))
	}))
	defer worker.Close()

	repo := newTestRepoForSender(t)
	reg := registry.New([]config.ServiceConfig{
		{Name: "example", SubmitURL: worker.URL, RetrieveURL: worker.URL, RunsPerUser: 2},
	})

	// Two jobs already in-flight (dispatched, not crashed) for user 7 —
	// DestID is set so ListStaleProcessing doesn't also pick these up.
	for i := 0; i < 2; i++ {
		job := &jobdb.Job{UserID: 7, Service: "example", Status: jobdb.JobProcessing, Loc: t.TempDir(), DestID: "already-dispatched", DestServiceURL: worker.URL}
		require.NoError(t, repo.Create(job))
	}

	loc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(loc, "run.sh"), []byte("echo hi"), 0o644))
	queued := &jobdb.Job{UserID: 7, Service: "example", Status: jobdb.JobQueued, Loc: loc}
	require.NoError(t, repo.Create(queued))

	sender := NewSender(repo, reg, httpclient.New(0), zap.NewNop(), nil)
	sender.Tick(context.Background())

	got, err := repo.GetByID(queued.ID)
	require.NoError(t, err)
	require.Equal(t, jobdb.JobQueued, got.Status, "quota must block promotion past the limit")
}

func TestSender_RedispatchesStaleProcessingJob(t *testing.T) {
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","status":"Prepared","loc":"/work/42"}`))
	}))
	defer worker.Close()

	repo := newTestRepoForSender(t)
	reg := registry.New([]config.ServiceConfig{
		{Name: "example", SubmitURL: worker.URL, RetrieveURL: worker.URL, RunsPerUser: 5},
	})

	loc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(loc, "run.sh"), []byte("echo hi"), 0o644))

	// Simulates a crash between TransitionToProcessing and
	// TransitionToSubmitted: Processing with no dest_id recorded yet.
	job := &jobdb.Job{UserID: 1, Service: "example", Status: jobdb.JobProcessing, Loc: loc}
	require.NoError(t, repo.Create(job))

	sender := NewSender(repo, reg, httpclient.New(0), zap.NewNop(), nil)
	sender.Tick(context.Background())

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	require.Equal(t, jobdb.JobSubmitted, got.Status, "a crashed Processing job must be redispatched, not stuck forever")
	require.Equal(t, "42", got.DestID)
}
