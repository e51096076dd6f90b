package api

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/upload"
)

// maxUploadBytes limits the raw size of a single image upload.
const maxUploadBytes = 10 << 20

// UploadsHandler handles presigned image uploads and serving.
type UploadsHandler struct {
	Uploads *upload.Service
}

type presignRequest struct {
	Files []struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	} `json:"files"`
}

type presignResponse struct {
	URLs []upload.Target `json:"urls"`
}

// Presign handles POST /presigned-urls.
func (h *UploadsHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Files) < model.MinImages || len(req.Files) > model.MaxImages {
		jsonError(w, http.StatusBadRequest, "between 1 and 4 files required")
		return
	}

	now := time.Now()
	targets := make([]upload.Target, 0, len(req.Files))
	for _, f := range req.Files {
		if !imaging.AllowedMIME[f.FileType] {
			jsonError(w, http.StatusBadRequest, "files must be JPEG, PNG, or WebP")
			return
		}
		target, err := h.Uploads.Presign(f.FileName, now)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid file name")
			return
		}
		targets = append(targets, target)
	}

	jsonResponse(w, http.StatusOK, presignResponse{URLs: targets})
}

// Put handles PUT /uploads/{key}: the direct upload against a presigned
// URL. The signature covers key and expiry; the body is processed
// (validated, downscaled, re-encoded) before it touches disk.
func (h *UploadsHandler) Put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusForbidden, "invalid upload url")
		return
	}

	switch err := h.Uploads.Verify(key, exp, r.URL.Query().Get("sig"), time.Now()); {
	case errors.Is(err, upload.ErrExpired):
		jsonError(w, http.StatusForbidden, "upload url expired")
		return
	case err != nil:
		jsonError(w, http.StatusForbidden, "invalid upload url")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	result, err := imaging.Process(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := h.Uploads.Store(key, result.Data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "uploaded"})
}

// Get handles GET /uploads/{key}: serves a stored image.
func (h *UploadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	path, err := h.Uploads.FilePath(r.PathValue("key"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
}
