package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("MATCH_THRESHOLD")
	os.Unsetenv("BLUR_THRESHOLD")
	os.Unsetenv("DETECTOR_URL")
	os.Unsetenv("DETECTOR_MIN_NEIGHBORS")
	os.Unsetenv("DETECTOR_MIN_SIZE")

	cfg := Load()

	if cfg.Data.Dir != "./data" {
		t.Errorf("expected default data dir './data', got '%s'", cfg.Data.Dir)
	}
	if cfg.Face.MatchThreshold != 0.4 {
		t.Errorf("expected default match threshold 0.4, got %f", cfg.Face.MatchThreshold)
	}
	if cfg.Face.BlurThreshold != nil {
		t.Errorf("expected blur check disabled by default, got %v", *cfg.Face.BlurThreshold)
	}
	if cfg.Detector.URL != "http://localhost:8600" {
		t.Errorf("unexpected default detector URL '%s'", cfg.Detector.URL)
	}
	if cfg.Detector.MinNeighbors != 5 {
		t.Errorf("expected default min neighbors 5, got %d", cfg.Detector.MinNeighbors)
	}
	if cfg.Detector.MinSize != 30 {
		t.Errorf("expected default min size 30, got %d", cfg.Detector.MinSize)
	}
}

func TestLoad_MatchThreshold(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected float64
	}{
		{"custom value", "0.6", 0.6},
		{"invalid value", "not-a-number", 0.4},
		{"negative value", "-0.2", 0.4},
		{"zero value", "0", 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MATCH_THRESHOLD", tt.value)

			cfg := Load()

			if cfg.Face.MatchThreshold != tt.expected {
				t.Errorf("expected threshold %f, got %f", tt.expected, cfg.Face.MatchThreshold)
			}
		})
	}
}

func TestLoad_BlurThreshold(t *testing.T) {
	t.Setenv("BLUR_THRESHOLD", "50")

	cfg := Load()

	if cfg.Face.BlurThreshold == nil {
		t.Fatal("expected blur threshold to be set")
	}
	if *cfg.Face.BlurThreshold != 50 {
		t.Errorf("expected blur threshold 50, got %f", *cfg.Face.BlurThreshold)
	}
}

func TestLoad_BlurThresholdInvalid(t *testing.T) {
	t.Setenv("BLUR_THRESHOLD", "garbage")

	cfg := Load()

	if cfg.Face.BlurThreshold != nil {
		t.Errorf("expected invalid blur threshold to disable the check, got %v", *cfg.Face.BlurThreshold)
	}
}

func TestLoad_DetectorConfig(t *testing.T) {
	t.Setenv("DETECTOR_URL", "http://detector:9000")
	t.Setenv("DETECTOR_MIN_NEIGHBORS", "3")
	t.Setenv("DETECTOR_MIN_SIZE", "50")

	cfg := Load()

	if cfg.Detector.URL != "http://detector:9000" {
		t.Errorf("expected detector URL 'http://detector:9000', got '%s'", cfg.Detector.URL)
	}
	if cfg.Detector.MinNeighbors != 3 {
		t.Errorf("expected min neighbors 3, got %d", cfg.Detector.MinNeighbors)
	}
	if cfg.Detector.MinSize != 50 {
		t.Errorf("expected min size 50, got %d", cfg.Detector.MinSize)
	}
}

func TestLoad_APIKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-123")
	t.Setenv("GEMINI_API_KEY", "gm-test-456")
	t.Setenv("AI_PROVIDER", "gemini")

	cfg := Load()

	if cfg.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("expected OpenAI key 'sk-test-123', got '%s'", cfg.OpenAI.APIKey)
	}
	if cfg.Gemini.APIKey != "gm-test-456" {
		t.Errorf("expected Gemini key 'gm-test-456', got '%s'", cfg.Gemini.APIKey)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got '%s'", cfg.AI.Provider)
	}
}

func TestLoad_PersonaLoaded(t *testing.T) {
	cfg := Load()

	if cfg.Persona.Name != "J.A.R.V.I.S." {
		t.Errorf("expected persona name 'J.A.R.V.I.S.', got '%s'", cfg.Persona.Name)
	}
	if !strings.Contains(cfg.Persona.SystemPrompt, "Tony Stark") {
		t.Error("expected system prompt to carry the persona description")
	}
	if cfg.Persona.DocPrompt == "" {
		t.Error("expected doc prompt to be loaded from embedded YAML")
	}
}
