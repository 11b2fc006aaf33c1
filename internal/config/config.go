package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed persona.yaml
var personaYAML []byte

type Config struct {
	Data     DataConfig
	Face     FaceConfig
	Detector DetectorConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	AI       AIConfig
	Persona  PersonaConfig
}

type DataConfig struct {
	Dir string // root directory for the registry, face samples and uploads
}

type FaceConfig struct {
	MatchThreshold float64  // minimum similarity score to declare a match
	BlurThreshold  *float64 // Laplacian variance cutoff; nil disables the blur check
}

type DetectorConfig struct {
	URL          string // face detector sidecar base URL
	MinNeighbors int    // minimum neighbor votes for a detection
	MinSize      int    // minimum face box edge in pixels
}

type OpenAIConfig struct {
	APIKey string
}

type GeminiConfig struct {
	APIKey string
}

type AIConfig struct {
	Provider string // "openai", "gemini" or "" to pick by available key
}

type PersonaConfig struct {
	Name         string `yaml:"name"`
	Tagline      string `yaml:"tagline"`
	SystemPrompt string `yaml:"system_prompt"`
	DocPrompt    string `yaml:"doc_prompt"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envOptionalFloat reads an environment variable as an optional positive float.
// Returns nil when the env var is unset, empty, or invalid - the feature
// guarded by the value stays disabled instead of running with a bad cutoff.
func envOptionalFloat(key string) *float64 {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return nil
	}
	return &f
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var persona PersonaConfig
	if err := yaml.Unmarshal(personaYAML, &persona); err != nil {
		// Embedded file, so this can only happen when the file itself is broken.
		panic("failed to unmarshal embedded persona.yaml: " + err.Error())
	}

	return &Config{
		Data: DataConfig{
			Dir: envString("DATA_DIR", "./data"),
		},
		Face: FaceConfig{
			MatchThreshold: envFloat("MATCH_THRESHOLD", 0.4),
			BlurThreshold:  envOptionalFloat("BLUR_THRESHOLD"),
		},
		Detector: DetectorConfig{
			URL:          envString("DETECTOR_URL", "http://localhost:8600"),
			MinNeighbors: envInt("DETECTOR_MIN_NEIGHBORS", 5),
			MinSize:      envInt("DETECTOR_MIN_SIZE", 30),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		AI: AIConfig{
			Provider: os.Getenv("AI_PROVIDER"),
		},
		Persona: persona,
	}
}
