package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/archive"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

// Download implements HEAD/GET /download/{id} (spec.md §4.1, §6.1). The
// status-code mapping here is the ABI (spec.md §9) and must not change.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	job, err := h.Repo.GetByID(uint(id))
	if err == repository.ErrNotFound {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("download: fetching job", zap.Error(err), zap.Uint64("job_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch job.Status {
	case jobdb.JobQueued, jobdb.JobProcessing, jobdb.JobSubmitted:
		w.WriteHeader(http.StatusAccepted)
	case jobdb.JobCleaned:
		w.WriteHeader(http.StatusNoContent)
	case jobdb.JobFailed:
		if job.FailReason == jobdb.FailReasonBadInput {
			w.WriteHeader(http.StatusBadRequest)
		} else {
			w.WriteHeader(http.StatusGone)
		}
	case jobdb.JobCompleted:
		h.serveArchive(w, r, job.Loc)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *Handler) serveArchive(w http.ResponseWriter, r *http.Request, loc string) {
	path := filepath.Join(loc, archive.ArchiveName)
	f, err := os.Open(path)
	if err != nil {
		h.Logger.Error("download: opening archive", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}
