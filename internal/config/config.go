package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
)

// ErrMissingCredential indicates a required API key is not set.
var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	Gemini  GeminiConfig
	Tavily  TavilyConfig
	Storage StorageConfig
	Server  ServerConfig
	Compose ComposeConfig
	Log     LogConfig
}

type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

type TavilyConfig struct {
	APIKey     string
	BaseURL    string
	Depth      string
	MaxResults int
	ExtractTop int
}

type StorageConfig struct {
	DataDir string
}

type ServerConfig struct {
	Port     int
	APIToken string
}

type ComposeConfig struct {
	MaxContextTokens int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Gemini: GeminiConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-2.5-flash",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Tavily: TavilyConfig{
			BaseURL:    "https://api.tavily.com",
			Depth:      "basic",
			MaxResults: 5,
			ExtractTop: 3,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Server: ServerConfig{
			Port: 4600,
		},
		Compose: ComposeConfig{
			MaxContextTokens: 4000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/sift/config.json, a .env file in the working directory
// (if present), and environment variables.
//
// Environment variables (SIFT_*) override backend values. The API keys are
// read only from the environment: GEMINI_API_KEY and TAVILY_API_KEY. Both
// are required; absence of either is fatal before any network call.
func Load() (Config, error) {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

// LoadLocal reads configuration like Load but does not require the API
// keys. Commands that never talk to the external services use this.
func LoadLocal() (Config, error) {
	_ = godotenv.Load()
	return loadLocalWith(newFileBackend())
}

func loadLocalWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg, err := loadLocalWith(b)
	if err != nil {
		return Config{}, err
	}

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("%w: GEMINI_API_KEY environment variable is required", ErrMissingCredential)
	}
	if cfg.Tavily.APIKey == "" {
		return Config{}, fmt.Errorf("%w: TAVILY_API_KEY environment variable is required", ErrMissingCredential)
	}

	return cfg, nil
}
