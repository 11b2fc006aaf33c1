package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jarvislab/jarvis/internal/faceauth"
)

const maxUploadBytes = 20 << 20

// FaceHandler exposes raw face detection for the camera UI.
type FaceHandler struct {
	svc *faceauth.Service
}

// NewFaceHandler creates a face analysis handler.
func NewFaceHandler(svc *faceauth.Service) *FaceHandler {
	return &FaceHandler{svc: svc}
}

// Analyze reports face locations in a multipart image upload.
func (h *FaceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	result, err := h.svc.Analyze(r.Context(), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// AnalyzeBase64 reports face locations in a base64 image payload.
func (h *FaceHandler) AnalyzeBase64(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "Missing 'image' in body")
		return
	}
	data, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid base64 image")
		return
	}

	result, err := h.svc.Analyze(r.Context(), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
