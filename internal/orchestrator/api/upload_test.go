package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/config"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/blob"
	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/registry"
	"github.com/rvhonorato/job-orchestrator/internal/orchestrator/repository"
)

func newTestHandler(t *testing.T) *Handler {
	dsn := filepath.Join(t.TempDir(), "test.sqlite")
	gdb, err := jobdb.New(jobdb.Config{DSN: dsn, Logger: zap.NewNop()})
	require.NoError(t, err)

	blobs, err := blob.New(t.TempDir())
	require.NoError(t, err)

	reg := registry.New([]config.ServiceConfig{
		{Name: "example", SubmitURL: "http://worker/submit", RetrieveURL: "http://worker/retrieve", RunsPerUser: 2},
	})

	return &Handler{
		Repo:     repository.NewJobRepository(gdb),
		Blobs:    blobs,
		Registry: reg,
		Logger:   zap.NewNop(),
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUpload_CreatesQueuedJob(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"user_id": "1", "service": "example"},
		map[string]string{"run.sh": "#!/bin/bash\necho hi\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"Queued"`)
}

func TestUpload_RejectsUnknownService(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"user_id": "1", "service": "nonexistent"},
		map[string]string{"run.sh": "#!/bin/bash\necho hi\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_RejectsMissingRunScript(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"user_id": "1", "service": "example"},
		map[string]string{"data.txt": "no script here"},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_PathTraversalIsSanitized(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t,
		map[string]string{"user_id": "1", "service": "example"},
		map[string]string{"../../etc/passwd": "junk", "run.sh": "#!/bin/bash\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
