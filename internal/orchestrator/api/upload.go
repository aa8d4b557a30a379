package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"
)

// maxUploadBytes is the default oversize cap named in spec.md §6.1.
const maxUploadBytes = 400 << 20

const runScriptName = "run.sh"

// Upload implements POST /upload (spec.md §4.1, §6.1).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "request too large or malformed multipart body")
		return
	}

	userIDStr := r.FormValue("user_id")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be an integer")
		return
	}

	service := r.FormValue("service")
	if service == "" {
		writeError(w, http.StatusBadRequest, "service is required")
		return
	}
	if _, ok := h.Registry.Lookup(service); !ok {
		writeError(w, http.StatusBadRequest, "unknown service")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	hasRunScript := false
	for _, fh := range files {
		if filepath.Base(fh.Filename) == runScriptName {
			hasRunScript = true
			break
		}
	}
	if !hasRunScript {
		writeError(w, http.StatusBadRequest, "run.sh is required among uploaded files")
		return
	}

	loc, err := h.Blobs.Create()
	if err != nil {
		h.Logger.Error("upload: allocating job dir", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to allocate storage")
		return
	}

	if err := writeUploadedFiles(loc, files); err != nil {
		h.Logger.Error("upload: writing files", zap.Error(err))
		_ = h.Blobs.Remove(loc)
		writeError(w, http.StatusInternalServerError, "failed to store uploaded files")
		return
	}

	job := &jobdb.Job{
		UserID:  userID,
		Service: service,
		Status:  jobdb.JobQueued,
		Loc:     loc,
	}
	if err := h.Repo.Create(job); err != nil {
		h.Logger.Error("upload: creating job record", zap.Error(err))
		_ = h.Blobs.Remove(loc)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(job))
}

// writeUploadedFiles writes every multipart file header under loc using a
// sanitized basename, stripping directory components and traversal
// sequences (spec.md §8's literal ../../etc/passwd test).
func writeUploadedFiles(loc string, files []*multipart.FileHeader) error {
	for _, fh := range files {
		if err := writeOneFile(loc, fh); err != nil {
			return err
		}
	}
	return nil
}

func writeOneFile(loc string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name := filepath.Base(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(loc, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
