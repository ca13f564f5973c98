package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Content  ContentConfig `yaml:"content"`
	Advice   AdviceConfig  `yaml:"advice"`
	Auth     AuthConfig    `yaml:"auth"`
	StateDir string        `yaml:"state_dir"`
	UserID   string        `yaml:"user_id"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ContentConfig identifies the hosted content store. BaseURL overrides the
// endpoint derived from ProjectID (useful for tests and self-hosted mirrors).
type ContentConfig struct {
	BaseURL    string `yaml:"base_url"`
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token"`
}

type AdviceConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_CONTENT_BASE_URL, LIFTLOG_CONTENT_PROJECT_ID,
//	LIFTLOG_CONTENT_DATASET, LIFTLOG_CONTENT_API_VERSION,
//	LIFTLOG_CONTENT_TOKEN,
//	LIFTLOG_ADVICE_BASE_URL, LIFTLOG_ADVICE_API_KEY, LIFTLOG_ADVICE_MODEL,
//	LIFTLOG_AUTH_API_KEY, LIFTLOG_STATE_DIR, LIFTLOG_USER_ID
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_CONTENT_BASE_URL"); v != "" {
		cfg.Content.BaseURL = v
	}
	if v := os.Getenv("LIFTLOG_CONTENT_PROJECT_ID"); v != "" {
		cfg.Content.ProjectID = v
	}
	if v := os.Getenv("LIFTLOG_CONTENT_DATASET"); v != "" {
		cfg.Content.Dataset = v
	}
	if v := os.Getenv("LIFTLOG_CONTENT_API_VERSION"); v != "" {
		cfg.Content.APIVersion = v
	}
	if v := os.Getenv("LIFTLOG_CONTENT_TOKEN"); v != "" {
		cfg.Content.Token = v
	}
	if v := os.Getenv("LIFTLOG_ADVICE_BASE_URL"); v != "" {
		cfg.Advice.BaseURL = v
	}
	if v := os.Getenv("LIFTLOG_ADVICE_API_KEY"); v != "" {
		cfg.Advice.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_ADVICE_MODEL"); v != "" {
		cfg.Advice.Model = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("LIFTLOG_USER_ID"); v != "" {
		cfg.UserID = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Content.APIVersion == "" {
		cfg.Content.APIVersion = "v2024-01-01"
	}
	if cfg.Advice.BaseURL == "" {
		cfg.Advice.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Advice.Model == "" {
		cfg.Advice.Model = "gpt-4o-mini"
	}
	if cfg.StateDir == "" {
		cfg.StateDir = "state"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Content.BaseURL == "" && c.Content.ProjectID == "" {
		return fmt.Errorf("content.project_id or content.base_url is required")
	}
	if c.Content.Dataset == "" {
		return fmt.Errorf("content.dataset is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}
