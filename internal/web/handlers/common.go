package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jarvislab/jarvis/internal/faceauth"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps validation failures to 400 and everything else
// to 500. Validation reasons are user-facing by construction.
func respondDomainError(w http.ResponseWriter, err error) {
	var ve *faceauth.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Reason)
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// decodeImage decodes a base64 image payload, accepting both bare base64
// and the data-URL form the browser camera produces.
func decodeImage(b64 string) ([]byte, error) {
	if idx := strings.Index(b64, ","); idx >= 0 {
		b64 = b64[idx+1:]
	}
	return base64.StdEncoding.DecodeString(b64)
}

// Root handles the API index endpoint.
func Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "J.A.R.V.I.S. API",
		"status":  "online",
	})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
