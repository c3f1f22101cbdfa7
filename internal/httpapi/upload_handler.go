package httpapi

import (
	"errors"
	"net/http"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/upload"
)

type UploadHandler struct {
	uploads  *upload.Service
	maxBytes int64
}

func NewUploadHandler(uploads *upload.Service, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

func (h *UploadHandler) Single(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}

	_, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	stored, err := h.uploads.Save(fh)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "Only image and video files are allowed")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusCreated, stored)
}

func (h *UploadHandler) Multiple(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	stored := make([]upload.StoredFile, 0, len(files))
	for _, fh := range files {
		f, err := h.uploads.Save(fh)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) {
				writeError(w, http.StatusBadRequest, "Only image and video files are allowed")
				return
			}
			writeServerError(w)
			return
		}
		stored = append(stored, *f)
	}
	writeData(w, http.StatusCreated, stored)
}
