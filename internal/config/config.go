// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/formation-kit/internal/llm"
)

// Defaults
const (
	DefaultPort                     = 8080
	DefaultLogLevel                 = "info"
	DefaultMaxConcurrentGenerations = 3
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn, error
	Port        int    `json:"port,omitempty"`         // HTTP listen port

	// MaxConcurrentGenerations bounds concurrent oracle calls within one batch
	MaxConcurrentGenerations int `json:"max_concurrent_generations,omitempty"`

	// Models overrides the model name per tier ("lite", "standard", "advanced")
	Models map[string]string `json:"models,omitempty"`

	AllowedOrigins []string `json:"allowed_origins,omitempty"` // CORS origins; empty allows any
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
// Unparseable numbers are reported rather than silently replaced.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.Port, err = envInt("PORT"); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentGenerations, err = envInt("MAX_CONCURRENT_GENERATIONS"); err != nil {
		return nil, err
	}

	for env, tier := range map[string]llm.ModelTier{
		"GEMINI_MODEL_LITE":     llm.TierLite,
		"GEMINI_MODEL_STANDARD": llm.TierStandard,
		"GEMINI_MODEL_ADVANCED": llm.TierAdvanced,
	} {
		if v := os.Getenv(env); v != "" {
			if cfg.Models == nil {
				cfg.Models = make(map[string]string)
			}
			cfg.Models[string(tier)] = v
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since each command requires different ones.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxConcurrentGenerations < 0 {
		return fmt.Errorf("config error: 'max_concurrent_generations' must be non-negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply environment values beneath a config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogLevel == "" {
		result.LogLevel = DefaultLogLevel
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.MaxConcurrentGenerations == 0 {
		result.MaxConcurrentGenerations = defaults.MaxConcurrentGenerations
	}
	if result.MaxConcurrentGenerations == 0 {
		result.MaxConcurrentGenerations = DefaultMaxConcurrentGenerations
	}

	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Models: file entries win per tier
	if len(defaults.Models) > 0 {
		merged := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			merged[k] = v
		}
		for k, v := range result.Models {
			merged[k] = v
		}
		result.Models = merged
	}

	return result
}

// Load reads the environment and, when path is set, a config file whose values take precedence
func Load(path string) (*Config, error) {
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}

	file := &Config{}
	if path != "" {
		if file, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	merged := file.MergeWithDefaults(*env)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LLMConfig returns the model configuration with any per-tier overrides applied
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	return cfg
}
