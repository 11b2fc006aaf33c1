package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jarvislab/jarvis/internal/docs"
)

// DocumentsHandler exposes document upload and Q&A.
type DocumentsHandler struct {
	svc *docs.Service
}

// NewDocumentsHandler creates a documents handler.
func NewDocumentsHandler(svc *docs.Service) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

func supportedDocument(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".docx", ".md", ".markdown":
		return true
	}
	return false
}

// Upload ingests a document for question answering.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	if !supportedDocument(header.Filename) {
		respondError(w, http.StatusBadRequest, "Supported formats: PDF, TXT, DOCX, MD")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	docID, err := h.svc.Upload(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, docs.ErrNoText) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "uploaded", "doc_id": docID})
}

// Query answers a question from the uploaded documents.
func (h *DocumentsHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.svc.Query(r.Context(), req.Question)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// List returns the uploaded documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"documents": h.svc.List()})
}
