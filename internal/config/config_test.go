package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.Model != "" {
		t.Errorf("Default model = %s, want empty", cfg.Defaults.Model)
	}
	if cfg.Defaults.Transcriber != TranscriberOpenAI {
		t.Errorf("Default transcriber = %s, want openai", cfg.Defaults.Transcriber)
	}
	if cfg.Defaults.MaxTitleLength != 100 {
		t.Errorf("Default max title length = %d, want 100", cfg.Defaults.MaxTitleLength)
	}
	if cfg.Defaults.CacheTTL != "7d" {
		t.Errorf("Default cache TTL = %s, want 7d", cfg.Defaults.CacheTTL)
	}
	if cfg.GenerationTimeout() != 90*time.Second {
		t.Errorf("GenerationTimeout() = %v, want 90s", cfg.GenerationTimeout())
	}
	if cfg.ItemTimeout() != 0 {
		t.Errorf("ItemTimeout() = %v, want 0", cfg.ItemTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantSecs int64
		wantErr  bool
	}{
		{"24h", 86400, false},
		{"7d", 604800, false},
		{"30d", 2592000, false},
		{"1h", 3600, false},
		{"invalid", 0, true},
		{"10m", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dur, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDuration(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if err == nil && int64(dur.Seconds()) != tt.wantSecs {
				t.Errorf("ParseDuration(%s) = %v, want %d seconds", tt.input, dur, tt.wantSecs)
			}
		})
	}
}

func TestConfig_Save_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Defaults.Model = "anthropic/claude-3-haiku"
	cfg.Defaults.Language = "it"
	cfg.Models.Providers = []domain.Provider{{Name: "Mistral", Models: []string{"mistralai/mistral-large"}}}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Defaults.Model != "anthropic/claude-3-haiku" {
		t.Errorf("Loaded model = %s, want anthropic/claude-3-haiku", loaded.Defaults.Model)
	}
	if loaded.Defaults.Language != "it" {
		t.Errorf("Loaded language = %s, want it", loaded.Defaults.Language)
	}
	catalog := loaded.Catalog()
	if catalog.Len() != 1 || !catalog.Contains("mistralai/mistral-large") {
		t.Errorf("Catalog() = %v, want the configured provider", catalog.Entries())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("defaults:\n  transcriber: whisper\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Defaults.Transcriber != TranscriberWhisper {
		t.Errorf("Transcriber = %s, want whisper", cfg.Defaults.Transcriber)
	}
	if cfg.Defaults.WhisperModel != "small" || cfg.Timeouts.Transcription != "10m" {
		t.Errorf("defaults were not kept: %+v %+v", cfg.Defaults, cfg.Timeouts)
	}
	if cfg.Catalog().Len() != 7 {
		t.Errorf("Catalog().Len() = %d, want built-in 7", cfg.Catalog().Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Defaults.CacheTTL != "7d" {
		t.Error("missing config file should load defaults")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown transcriber", func(c *Config) { c.Defaults.Transcriber = "vosk" }},
		{"tiny title budget", func(c *Config) { c.Defaults.MaxTitleLength = 10 }},
		{"bad cache ttl", func(c *Config) { c.Defaults.CacheTTL = "forever" }},
		{"bad timeout", func(c *Config) { c.Timeouts.Generation = "soon" }},
		{"negative timeout", func(c *Config) { c.Timeouts.Item = "-1s" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	t.Setenv("OPENROUTER_BASE_URL", "https://proxy.internal")
	t.Setenv("OPENROUTER_ALLOWED_HOSTS", "proxy.internal, ,openrouter.ai")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Defaults.Model != "openai/gpt-4o-mini" {
		t.Errorf("Model = %s", cfg.Defaults.Model)
	}
	if cfg.OpenRouter.BaseURL != "https://proxy.internal" {
		t.Errorf("BaseURL = %s", cfg.OpenRouter.BaseURL)
	}
	if len(cfg.OpenRouter.AllowedHosts) != 2 || cfg.OpenRouter.AllowedHosts[0] != "proxy.internal" {
		t.Errorf("AllowedHosts = %v", cfg.OpenRouter.AllowedHosts)
	}
}

func TestConfig_LoadSecrets(t *testing.T) {
	tests := []struct {
		name        string
		transcriber string
		openrouter  string
		openai      string
		wantKey     string
	}{
		{"both keys", TranscriberOpenAI, "or-key", "oa-key", ""},
		{"missing openrouter key", TranscriberOpenAI, "", "oa-key", "OPENROUTER_API_KEY"},
		{"missing openai key", TranscriberOpenAI, "or-key", "", "OPENAI_API_KEY"},
		{"local whisper needs no openai key", TranscriberWhisper, "or-key", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENROUTER_API_KEY", tt.openrouter)
			t.Setenv("OPENAI_API_KEY", tt.openai)

			cfg := DefaultConfig()
			cfg.Defaults.Transcriber = tt.transcriber

			secrets, err := cfg.LoadSecrets()
			if tt.wantKey != "" {
				if !errors.Is(err, domain.ErrConfigurationMissing) {
					t.Errorf("LoadSecrets() error = %v, want ErrConfigurationMissing", err)
				}
				var missing *MissingKeyError
				if !errors.As(err, &missing) || missing.Key != tt.wantKey {
					t.Errorf("LoadSecrets() error = %v, want missing %s", err, tt.wantKey)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadSecrets() error = %v", err)
			}
			if secrets.OpenRouterKey != tt.openrouter {
				t.Errorf("OpenRouterKey = %q", secrets.OpenRouterKey)
			}
		})
	}
}

func TestAppDir(t *testing.T) {
	dir := AppDir()
	if dir == "" {
		t.Error("AppDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".vidtitle")
	if dir != expected {
		t.Errorf("AppDir() = %s, want %s", dir, expected)
	}
	if LogsDir() != filepath.Join(expected, "logs") {
		t.Errorf("LogsDir() = %s", LogsDir())
	}
}
