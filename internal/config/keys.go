package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "gemini.api_key", typ: kString, env: "GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "gemini.base_url", typ: kString, env: "SIFT_GEMINI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.BaseURL },
	},
	{
		key: "gemini.model", typ: kString, env: "SIFT_GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "gemini.temperature", typ: kFloat, env: "SIFT_GEMINI_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.Gemini.Temperature },
	},
	{
		key: "gemini.max_tokens", typ: kInt, env: "SIFT_GEMINI_MAX_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.Gemini.MaxTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.Gemini.MaxTokens },
	},
	{
		key: "tavily.api_key", typ: kString, env: "TAVILY_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Tavily.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Tavily.APIKey },
	},
	{
		key: "tavily.base_url", typ: kString, env: "SIFT_TAVILY_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Tavily.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Tavily.BaseURL },
	},
	{
		key: "tavily.depth", typ: kString, env: "SIFT_TAVILY_DEPTH",
		apply:   func(cfg *Config, v any) { cfg.Tavily.Depth = v.(string) },
		extract: func(cfg Config) any { return cfg.Tavily.Depth },
	},
	{
		key: "tavily.max_results", typ: kInt, env: "SIFT_TAVILY_MAX_RESULTS",
		apply:   func(cfg *Config, v any) { cfg.Tavily.MaxResults = v.(int) },
		extract: func(cfg Config) any { return cfg.Tavily.MaxResults },
	},
	{
		key: "tavily.extract_top", typ: kInt, env: "SIFT_TAVILY_EXTRACT_TOP",
		apply:   func(cfg *Config, v any) { cfg.Tavily.ExtractTop = v.(int) },
		extract: func(cfg Config) any { return cfg.Tavily.ExtractTop },
	},
	{
		key: "storage.data_dir", typ: kString, env: "SIFT_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "server.port", typ: kInt, env: "SIFT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "SIFT_SERVER_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "compose.max_context_tokens", typ: kInt, env: "SIFT_COMPOSE_MAX_CONTEXT_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.Compose.MaxContextTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.Compose.MaxContextTokens },
	},
	{
		key: "log.level", typ: kString, env: "SIFT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
