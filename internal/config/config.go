package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	AI    AIConfig
	Drive DriveConfig
}

// AIConfig holds AI provider configuration.
type AIConfig struct {
	// BaseURL is the chat-completions endpoint of the default provider.
	BaseURL string `envconfig:"DRAFTDESK_AI_BASE_URL" default:"https://api.openai.com/v1"`

	// APIKey authorizes requests against the provider.
	APIKey string `envconfig:"DRAFTDESK_AI_API_KEY"`

	// Provider is the default provider name used when a session does not
	// select one explicitly.
	Provider string `envconfig:"DRAFTDESK_AI_PROVIDER" default:"openai"`

	// Model is the default model used when a session does not select one.
	Model string `envconfig:"DRAFTDESK_AI_MODEL" default:"gpt-4o-mini"`

	// RequestTimeout bounds a single provider exchange. Exchanges may sit in
	// upstream rate-limit backoff for a long time, so this defaults high.
	RequestTimeout time.Duration `envconfig:"DRAFTDESK_AI_TIMEOUT" default:"10m"`
}

// DriveConfig holds the attachment-candidate source configuration.
type DriveConfig struct {
	// FolderID is the Drive folder whose files are offered to the matcher
	// as attachment candidates.
	FolderID string `envconfig:"DRAFTDESK_DRIVE_FOLDER_ID"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			RequestTimeout: 10 * time.Minute,
		},
	}
}
