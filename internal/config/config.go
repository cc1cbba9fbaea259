package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devbush/vidtitle/internal/domain"
)

// Transcription backends
const (
	TranscriberOpenAI  = "openai"
	TranscriberWhisper = "whisper"
)

// Config represents the application configuration
type Config struct {
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Paths      PathsConfig      `yaml:"paths"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Logging    LoggingConfig    `yaml:"logging"`
	Models     ModelsConfig     `yaml:"models"`
}

// DefaultsConfig holds default values
type DefaultsConfig struct {
	Model          string `yaml:"model"`
	Language       string `yaml:"language"`
	Transcriber    string `yaml:"transcriber"`
	WhisperModel   string `yaml:"whisper_model"`
	MaxTitleLength int    `yaml:"max_title_length"`
	CacheTTL       string `yaml:"cache_ttl"`
}

// TimeoutsConfig holds per-operation timeouts in time.ParseDuration form
type TimeoutsConfig struct {
	Generation    string `yaml:"generation"`
	Transcription string `yaml:"transcription"`
	Item          string `yaml:"item"`
}

// PathsConfig holds custom path overrides
type PathsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	Whisper string `yaml:"whisper"`
}

// OpenRouterConfig configures the title generation endpoint
type OpenRouterConfig struct {
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	Temperature  *float32 `yaml:"temperature,omitempty"`
	MaxTokens    int      `yaml:"max_tokens"`
}

// LoggingConfig configures the run log
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ModelsConfig optionally replaces the built-in model catalog
type ModelsConfig struct {
	Providers []domain.Provider `yaml:"providers"`
}

// Secrets holds API keys read from the environment
type Secrets struct {
	OpenRouterKey string
	OpenAIKey     string
}

// MissingKeyError names the environment variable that must be set
type MissingKeyError struct {
	Key      string
	Provider string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: %s is not set", domain.ErrConfigurationMissing, e.Key)
}

func (e *MissingKeyError) Unwrap() error {
	return domain.ErrConfigurationMissing
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Model:          "",
			Language:       "",
			Transcriber:    TranscriberOpenAI,
			WhisperModel:   "small",
			MaxTitleLength: domain.DefaultMaxTitleLength,
			CacheTTL:       "7d",
		},
		Timeouts: TimeoutsConfig{
			Generation:    "90s",
			Transcription: "10m",
			Item:          "0s",
		},
		OpenRouter: OpenRouterConfig{
			BaseURL: "https://openrouter.ai",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// AppDir returns the application directory (~/.vidtitle)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vidtitle"
	}
	return filepath.Join(home, ".vidtitle")
}

// ModelsDir returns the whisper models directory
func ModelsDir() string {
	return filepath.Join(AppDir(), "models")
}

// CacheDir returns the transcript cache directory
func CacheDir() string {
	return filepath.Join(AppDir(), "cache")
}

// BinDir returns the bin directory
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// LogsDir returns the log directory
func LogsDir() string {
	return filepath.Join(AppDir(), "logs")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), ModelsDir(), CacheDir(), BinDir(), LogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads config from default path
func LoadDefault() (*Config, error) {
	return Load(ConfigPath())
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// ApplyEnv overrides config values from OPENROUTER_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("OPENROUTER_MODEL")); v != "" {
		c.Defaults.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL")); v != "" {
		c.OpenRouter.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENROUTER_ALLOWED_HOSTS")); v != "" {
		var hosts []string
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}
		c.OpenRouter.AllowedHosts = hosts
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	switch c.Defaults.Transcriber {
	case TranscriberOpenAI, TranscriberWhisper:
	default:
		return fmt.Errorf("invalid defaults.transcriber %q (use %s or %s)", c.Defaults.Transcriber, TranscriberOpenAI, TranscriberWhisper)
	}
	if c.Defaults.MaxTitleLength <= domain.MinMainTitleLength {
		return fmt.Errorf("defaults.max_title_length must be greater than %d, got %d", domain.MinMainTitleLength, c.Defaults.MaxTitleLength)
	}
	if _, err := c.GetCacheTTL(); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"timeouts.generation":    c.Timeouts.Generation,
		"timeouts.transcription": c.Timeouts.Transcription,
		"timeouts.item":          c.Timeouts.Item,
	} {
		if _, err := parseTimeout(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

// GetCacheTTL returns the cache TTL as a duration
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return ParseDuration(c.Defaults.CacheTTL)
}

// GenerationTimeout returns the OpenRouter request timeout
func (c *Config) GenerationTimeout() time.Duration {
	d, _ := parseTimeout(c.Timeouts.Generation)
	return d
}

// TranscriptionTimeout returns the transcription timeout
func (c *Config) TranscriptionTimeout() time.Duration {
	d, _ := parseTimeout(c.Timeouts.Transcription)
	return d
}

// ItemTimeout returns the per-video timeout, 0 for none
func (c *Config) ItemTimeout() time.Duration {
	d, _ := parseTimeout(c.Timeouts.Item)
	return d
}

// Catalog returns the configured model catalog, or the built-in one.
func (c *Config) Catalog() *domain.Catalog {
	if len(c.Models.Providers) == 0 {
		return domain.DefaultCatalog()
	}
	return domain.NewCatalog(c.Models.Providers)
}

// LoadSecrets reads API keys from the environment. The OpenAI key is only
// required when the remote transcriber is configured.
func (c *Config) LoadSecrets() (*Secrets, error) {
	s := &Secrets{
		OpenRouterKey: strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}
	if s.OpenRouterKey == "" {
		return nil, &MissingKeyError{Key: "OPENROUTER_API_KEY", Provider: "OpenRouter"}
	}
	if c.Defaults.Transcriber == TranscriberOpenAI && s.OpenAIKey == "" {
		return nil, &MissingKeyError{Key: "OPENAI_API_KEY", Provider: "OpenAI"}
	}
	return s, nil
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

var durationPattern = regexp.MustCompile(`^(\d+)(h|d)$`)

// ParseDuration parses duration strings like "24h", "7d", "30d"
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s (use format like 24h, 7d)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch unit {
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
