package cmd

import (
	"context"
	"fmt"

	"github.com/jarvislab/jarvis/internal/ai"
	"github.com/jarvislab/jarvis/internal/config"
	"github.com/jarvislab/jarvis/internal/detector"
	"github.com/jarvislab/jarvis/internal/faceauth"
	"github.com/jarvislab/jarvis/internal/registry"
)

// Prices per 1M tokens for the models the providers use.
var (
	openAIPricing = ai.RequestPricing{Input: 0.40, Output: 1.60}
	geminiPricing = ai.RequestPricing{Input: 0.30, Output: 2.50}
)

// buildFaceService wires the registry, detector client and face service
// from config. Shared by serve and the local CLI commands.
func buildFaceService(cfg *config.Config) (*faceauth.Service, *registry.Registry, error) {
	reg, err := registry.Open(cfg.Data.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open user registry: %w", err)
	}
	locator := detector.NewClient(cfg.Detector.URL, cfg.Detector.MinNeighbors, cfg.Detector.MinSize)
	svc := faceauth.New(locator, reg, cfg.Face.MatchThreshold, cfg.Face.BlurThreshold)
	return svc, reg, nil
}

// buildProvider picks the AI provider from config. AI_PROVIDER forces a
// choice; otherwise the first configured key wins, OpenAI before Gemini.
// Returns nil when no key is configured.
func buildProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	switch cfg.AI.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		return ai.NewOpenAIProvider(cfg.OpenAI.APIKey, openAIPricing), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER=gemini but GEMINI_API_KEY is not set")
		}
		return ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, geminiPricing)
	case "":
		if cfg.OpenAI.APIKey != "" {
			return ai.NewOpenAIProvider(cfg.OpenAI.APIKey, openAIPricing), nil
		}
		if cfg.Gemini.APIKey != "" {
			return ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, geminiPricing)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q (want openai or gemini)", cfg.AI.Provider)
	}
}
