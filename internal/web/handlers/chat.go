package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jarvislab/jarvis/internal/ai"
)

// ChatHandler relays conversation history to the configured AI provider.
// The provider may be nil when no API key is configured.
type ChatHandler struct {
	provider     ai.Provider
	systemPrompt string
}

// NewChatHandler creates a chat handler. systemPrompt comes from the
// embedded persona config.
func NewChatHandler(provider ai.Provider, systemPrompt string) *ChatHandler {
	return &ChatHandler{provider: provider, systemPrompt: systemPrompt}
}

// Message sends the conversation to the provider and returns its reply.
// The request body is the message array itself, matching the frontend
// contract.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondError(w, http.StatusServiceUnavailable,
			"AI provider not configured. Set OPENAI_API_KEY or GEMINI_API_KEY in .env")
		return
	}

	var messages []ai.Message
	if err := json.NewDecoder(r.Body).Decode(&messages); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	reply, err := h.provider.Chat(r.Context(), h.systemPrompt, messages)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"content": reply})
}
