package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jarvislab/jarvis/internal/faceauth"
)

// AuthHandler exposes the face enrollment and login flows.
type AuthHandler struct {
	svc *faceauth.Service
}

// NewAuthHandler creates an auth handler backed by the face service.
func NewAuthHandler(svc *faceauth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type imageRequest struct {
	Image string `json:"image"`
	Name  string `json:"name"`
}

// imageFromRequest decodes the JSON body and its base64 image field.
// A nil return means the response has already been written.
func imageFromRequest(w http.ResponseWriter, r *http.Request) ([]byte, *imageRequest) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, nil
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "Face image is required")
		return nil, nil
	}
	data, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid base64 image")
		return nil, nil
	}
	return data, &req
}

// Validate checks an image for enrollment suitability. Detection
// problems are part of the result, not errors, so this is always 200
// once the body parses.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	data, _ := imageFromRequest(w, r)
	if data == nil {
		return
	}

	result, err := h.svc.Validate(r.Context(), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RegisterFace stores a validated face and returns the pending
// credentials for the follow-up register-complete call.
func (h *AuthHandler) RegisterFace(w http.ResponseWriter, r *http.Request) {
	data, _ := imageFromRequest(w, r)
	if data == nil {
		return
	}

	creds, err := h.svc.RegisterFace(r.Context(), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, creds)
}

// RegisterComplete commits the display name for a pending registration.
func (h *AuthHandler) RegisterComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	creds, err := h.svc.RegisterComplete(r.Context(), req.UserID, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, creds)
}

// Register is the one-shot flow: image plus optional name.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	data, req := imageFromRequest(w, r)
	if data == nil {
		return
	}

	creds, err := h.svc.Register(r.Context(), data, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, creds)
}

// Login authenticates a face against the registry.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data, _ := imageFromRequest(w, r)
	if data == nil {
		return
	}

	creds, err := h.svc.Login(r.Context(), data)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, creds)
}
