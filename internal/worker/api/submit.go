package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const maxSubmitBytes = 400 << 20

// Submit implements POST /submit (spec.md §4.6, §6.2).
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusInternalServerError, "request too large or malformed multipart body")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusInternalServerError, "at least one file is required")
		return
	}

	loc, err := h.WorkDir.Create()
	if err != nil {
		h.Logger.Error("submit: allocating payload dir", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to allocate storage")
		return
	}

	if err := writeFiles(loc, files); err != nil {
		h.Logger.Error("submit: writing files", zap.Error(err))
		_ = h.WorkDir.Remove(loc)
		writeError(w, http.StatusInternalServerError, "failed to store uploaded files")
		return
	}

	payload := h.Store.Create(loc)

	writeJSON(w, http.StatusOK, submitResponse{
		ID:     uintToString(payload.ID),
		Status: string(payload.Status),
		Loc:    payload.Loc,
	})
}

type submitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Loc    string `json:"loc"`
}

func writeFiles(loc string, files []*multipart.FileHeader) error {
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
