// Package config provides YAML-based configuration loading for Reconboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Reconboard configuration, loaded from config.yaml.
// Secrets may be supplied or overridden through RECONBOARD_* environment
// variables so they stay out of the file.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	Port          int           `yaml:"port"`
	DatabaseDSN   string        `yaml:"database_dsn"`
	SessionSecret string        `yaml:"session_secret"`
	Redis         RedisConfig   `yaml:"redis"`
	SMTP          SMTPConfig    `yaml:"smtp"`
	Slack         SlackConfig   `yaml:"slack"`
	Discord       DiscordConfig `yaml:"discord"`
	Digest        DigestConfig  `yaml:"digest"`
}

// RedisConfig holds connection settings for the optional analytics cache.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SMTPConfig holds settings for the outbound mail collaborator.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SlackConfig enables the Slack notification channel when Token is set.
type SlackConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig enables the Discord notification channel when Token is set.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// DigestConfig controls the scheduled daily summary notification.
type DigestConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Schedule  string `yaml:"schedule"` // 5-field cron expression
	Channel   string `yaml:"channel"`  // notify channel name, e.g. "email", "slack"
	Recipient string `yaml:"recipient"`
}

// Load reads a YAML config file from path, applies environment overrides,
// and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides file values with RECONBOARD_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("RECONBOARD_DATABASE_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("RECONBOARD_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("RECONBOARD_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("RECONBOARD_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("RECONBOARD_SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("RECONBOARD_SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("RECONBOARD_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.From == "" && c.SMTP.Username != "" {
		c.SMTP.From = c.SMTP.Username
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 8 * * *"
	}
	if c.Digest.Channel == "" {
		c.Digest.Channel = "email"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.DatabaseDSN == "" {
		errs = append(errs, "database_dsn is required")
	}
	if c.SessionSecret == "" {
		errs = append(errs, "session_secret is required")
	}
	if c.Digest.Enabled && c.Digest.Recipient == "" {
		errs = append(errs, "digest.recipient is required when digest is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
