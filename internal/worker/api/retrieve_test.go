package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rvhonorato/job-orchestrator/internal/archive"
	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
)

func withIDParam(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRetrieve_UnknownIDIs404(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/retrieve/1", nil)
	req = withIDParam(req, "1")
	rec := httptest.NewRecorder()

	h.Retrieve(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRetrieve_PreparedIs202(t *testing.T) {
	h := newTestHandler(t)
	p := h.Store.Create(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/retrieve/1", nil)
	req = withIDParam(req, uintToString(p.ID))
	rec := httptest.NewRecorder()

	h.Retrieve(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRetrieve_FailedIs410(t *testing.T) {
	h := newTestHandler(t)
	p := h.Store.Create(t.TempDir())
	h.Store.SetStatus(p.ID, store.Failed)

	req := httptest.NewRequest(http.MethodGet, "/retrieve/1", nil)
	req = withIDParam(req, uintToString(p.ID))
	rec := httptest.NewRecorder()

	h.Retrieve(rec, req)
	require.Equal(t, http.StatusGone, rec.Code)
}

func TestRetrieve_InvalidIs400(t *testing.T) {
	h := newTestHandler(t)
	p := h.Store.Create(t.TempDir())
	h.Store.SetStatus(p.ID, store.Invalid)

	req := httptest.NewRequest(http.MethodGet, "/retrieve/1", nil)
	req = withIDParam(req, uintToString(p.ID))
	rec := httptest.NewRecorder()

	h.Retrieve(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrieve_CompletedServesArchive(t *testing.T) {
	h := newTestHandler(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.txt"), []byte("hi"), 0o644))
	require.NoError(t, archive.Dir(dir, filepath.Join(dir, archive.ArchiveName)))

	p := h.Store.Create(dir)
	h.Store.SetStatus(p.ID, store.Completed)

	req := httptest.NewRequest(http.MethodGet, "/retrieve/1", nil)
	req = withIDParam(req, uintToString(p.ID))
	rec := httptest.NewRecorder()

	h.Retrieve(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	require.NotZero(t, rec.Body.Len())
}
