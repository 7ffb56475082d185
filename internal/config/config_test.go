package config

import (
	"errors"
	"strings"
	"testing"
)

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend struct {
	data map[string]any
}

func newMapBackend() *mapBackend {
	return &mapBackend{data: make(map[string]any)}
}

func (b *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", true, errors.New("not a string")
	}
	return s, true, nil
}

func (b *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, true, errors.New("not an int")
	}
	return i, true, nil
}

func (b *mapBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *mapBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *mapBackend) Delete(key string) error          { delete(b.data, key); return nil }

func setRequiredKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gem-test-key")
	t.Setenv("TAVILY_API_KEY", "tvly-test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredKeys(t)

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("expected default model, got %q", cfg.Gemini.Model)
	}
	if cfg.Tavily.MaxResults != 5 {
		t.Errorf("expected default max results 5, got %d", cfg.Tavily.MaxResults)
	}
	if cfg.Gemini.APIKey != "gem-test-key" {
		t.Errorf("expected API key from env, got %q", cfg.Gemini.APIKey)
	}
}

func TestLoadMissingGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "tvly-test-key")

	_, err := loadWith(newMapBackend())
	if err == nil {
		t.Fatal("expected error for missing GEMINI_API_KEY")
	}
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestLoadLocalToleratesMissingKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")

	cfg, err := loadLocalWith(newMapBackend())
	if err != nil {
		t.Fatalf("loadLocalWith error: %v", err)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("expected default data dir")
	}
}

func TestLoadMissingTavilyKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-test-key")
	t.Setenv("TAVILY_API_KEY", "")

	_, err := loadWith(newMapBackend())
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestBackendValuesApplied(t *testing.T) {
	setRequiredKeys(t)

	b := newMapBackend()
	b.data["gemini.model"] = "gemini-2.5-pro"
	b.data["tavily.max_results"] = 8
	b.data["gemini.temperature"] = "0.2"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("expected backend model, got %q", cfg.Gemini.Model)
	}
	if cfg.Tavily.MaxResults != 8 {
		t.Errorf("expected backend max results 8, got %d", cfg.Tavily.MaxResults)
	}
	if cfg.Gemini.Temperature != 0.2 {
		t.Errorf("expected backend temperature 0.2, got %v", cfg.Gemini.Temperature)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("SIFT_GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("SIFT_TAVILY_DEPTH", "advanced")

	b := newMapBackend()
	b.data["gemini.model"] = "gemini-2.5-pro"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("env should override backend, got %q", cfg.Gemini.Model)
	}
	if cfg.Tavily.Depth != "advanced" {
		t.Errorf("expected env depth, got %q", cfg.Tavily.Depth)
	}
}

func TestSetKeyRejectsSecrets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := SetKey("gemini.api_key", "leaked")
	if err == nil {
		t.Fatal("expected error setting a secret key")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error should point at the env var: %v", err)
	}
}

func TestSetKeyUnknown(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := SetKey("no.such.key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	setRequiredKeys(t)

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	for _, k := range ShowAll(cfg) {
		if k.Key == "gemini.api_key" || k.Key == "tavily.api_key" {
			t.Errorf("secret key %q should not be listed", k.Key)
		}
		if strings.Contains(k.Value, "test-key") {
			t.Errorf("secret value leaked through %q", k.Key)
		}
	}
}
