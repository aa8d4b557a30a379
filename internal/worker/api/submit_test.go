package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rvhonorato/job-orchestrator/internal/worker/store"
	"github.com/rvhonorato/job-orchestrator/internal/worker/workdir"
)

func newTestHandler(t *testing.T) *Handler {
	wd, err := workdir.New(t.TempDir())
	require.NoError(t, err)
	return &Handler{Store: store.New(), WorkDir: wd, Logger: zap.NewNop()}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, content := range files {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestSubmit_CreatesPayload(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string]string{"run.sh": "#!/bin/bash\necho hi\n"})

	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"Prepared"`)

	payloads := h.Store.ListByStatus(store.Prepared)
	require.Len(t, payloads, 1)
}

func TestSubmit_RejectsEmptyUpload(t *testing.T) {
	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string]string{})

	req := httptest.NewRequest(http.MethodPost, "/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
