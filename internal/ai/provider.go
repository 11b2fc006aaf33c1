package ai

import "context"

// Message roles as they appear in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider defines the interface for chat backends.
type Provider interface {
	Name() string
	Chat(ctx context.Context, systemPrompt string, messages []Message) (string, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Embedder turns text into vectors for similarity search. Not every
// provider supports it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}
