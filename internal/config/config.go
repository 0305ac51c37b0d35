// Package config loads backend configuration from environment variables,
// plus the optional YAML tools file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`

	// Persistence
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"` // "file" or "sqlite"
	DataDir      string `envconfig:"DATA_DIR" default:"./data"`
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"./data/sheikh.db"`

	// Session cache
	CacheCapacity int `envconfig:"SESSION_CACHE_CAPACITY" default:"1024"`

	// OpenAI (optional — a deterministic stub is used when unset)
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	OpenAIMaxTokens int    `envconfig:"OPENAI_MAX_TOKENS" default:"2000"`

	// Tools
	ShellTimeout time.Duration `envconfig:"SHELL_TIMEOUT" default:"30s"`
	ShellWorkDir string        `envconfig:"SHELL_WORK_DIR"`
	ToolsFile    string        `envconfig:"TOOLS_FILE"` // YAML file with the shell allowlist

	// Streaming
	StreamStepDelay time.Duration `envconfig:"STREAM_STEP_DELAY" default:"0s"`

	// Slack notifications (optional)
	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// OpenAIEnabled returns true if an OpenAI API key is configured.
func (c *Config) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// SlackEnabled returns true if Slack notifications are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}

// ToolsConfig is the YAML tools file schema.
type ToolsConfig struct {
	// AllowedCommands restricts the first token of shell commands.
	// Empty means no restriction.
	AllowedCommands []string `yaml:"allowed_commands"`
}

// LoadTools parses the YAML tools file. A missing path returns an empty
// config rather than an error.
func LoadTools(path string) (*ToolsConfig, error) {
	if path == "" {
		return &ToolsConfig{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tools file: %w", err)
	}
	var tc ToolsConfig
	if err := yaml.Unmarshal(raw, &tc); err != nil {
		return nil, fmt.Errorf("parsing tools file: %w", err)
	}
	return &tc, nil
}
