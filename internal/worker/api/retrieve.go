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
	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
)

// Retrieve implements GET /retrieve/{id} (spec.md §4.6, §6.2). The
// status-code mapping is the ABI (spec.md §9) and must not change.
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	payload, ok := h.Store.Get(uint(id))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch payload.Status {
	case store.Prepared, store.Running:
		w.WriteHeader(http.StatusAccepted)
	case store.Invalid:
		w.WriteHeader(http.StatusBadRequest)
	case store.Failed:
		w.WriteHeader(http.StatusGone)
	case store.Completed:
		h.serveArchive(w, r, payload.Loc)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) serveArchive(w http.ResponseWriter, r *http.Request, loc string) {
	path := filepath.Join(loc, archive.ArchiveName)
	f, err := os.Open(path)
	if err != nil {
		h.Logger.Error("retrieve: opening archive", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, f)
}
