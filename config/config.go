package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	SocGuard SocGuardConfig `yaml:"socguard"`
}

// SocGuardConfig is the project configuration.
type SocGuardConfig struct {
	Actor      string           `yaml:"actor"`
	Guardrails GuardrailsConfig `yaml:"guardrails"`
	Store      StoreConfig      `yaml:"store"`
	Lock       LockConfig       `yaml:"lock"`
	Input      InputConfig      `yaml:"input"`
	Notify     NotifyConfig     `yaml:"notify"`
	Executor   ExecutorConfig   `yaml:"executor"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// GuardrailsConfig holds the isolation governance thresholds. Loaded once
// at startup, immutable afterwards.
type GuardrailsConfig struct {
	Per5Minutes        int           `yaml:"per_5_minutes"`
	PerHour            int           `yaml:"per_hour"`
	PerDay             int           `yaml:"per_day"`
	BatchSizeMax       int           `yaml:"batch_size_max"`
	HighThreatCountMax int           `yaml:"high_threat_count_max"`
	MassExceptionMin   int           `yaml:"mass_exception_min"`
	ConfirmationPhrase string        `yaml:"confirmation_phrase"`
	ConfirmationDelay  time.Duration `yaml:"confirmation_delay"`
}

// StoreConfig controls the audit store backend.
type StoreConfig struct {
	Mode  string      `yaml:"mode"` // redis|memory
	Redis RedisConfig `yaml:"redis"`
}

// LockConfig controls the lock-state backend.
type LockConfig struct {
	Mode  string      `yaml:"mode"` // redis|file
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis access.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// InputConfig controls hunt-result intake.
type InputConfig struct {
	Mode  string           `yaml:"mode"` // file|redis
	File  string           `yaml:"file"`
	Redis RedisQueueConfig `yaml:"redis"`
}

// RedisQueueConfig controls the Redis hunt-result queue.
type RedisQueueConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// NotifyConfig controls SOC-lead alerting.
type NotifyConfig struct {
	Mode    string        `yaml:"mode"` // smtp|webhook|log
	SMTP    SMTPConfig    `yaml:"smtp"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SMTPConfig controls email alert delivery.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// WebhookConfig controls HTTP alert delivery.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// ExecutorConfig controls the isolation action client.
type ExecutorConfig struct {
	Mode    string        `yaml:"mode"` // http|dryrun
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required settings after defaults have been applied.
// A failure here is fatal at startup; nothing may run half-configured.
func (c *Config) Validate() error {
	g := c.SocGuard.Guardrails
	if g.Per5Minutes <= 0 || g.PerHour <= 0 || g.PerDay <= 0 {
		return fmt.Errorf("config: isolation window limits must be positive")
	}
	if g.BatchSizeMax <= 0 {
		return fmt.Errorf("config: batch_size_max must be positive")
	}
	if g.ConfirmationPhrase == "" {
		return fmt.Errorf("config: confirmation_phrase is required")
	}
	if g.ConfirmationDelay < 0 {
		return fmt.Errorf("config: confirmation_delay must not be negative")
	}

	switch c.SocGuard.Store.Mode {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown store mode %q", c.SocGuard.Store.Mode)
	}

	switch c.SocGuard.Lock.Mode {
	case "redis":
	case "file":
		if c.SocGuard.Lock.Path == "" {
			return fmt.Errorf("config: lock.path is required for file lock mode")
		}
	default:
		return fmt.Errorf("config: unknown lock mode %q", c.SocGuard.Lock.Mode)
	}

	switch c.SocGuard.Notify.Mode {
	case "smtp":
		s := c.SocGuard.Notify.SMTP
		if s.Host == "" || s.Username == "" || s.Password == "" || s.To == "" {
			return fmt.Errorf("config: smtp notify mode requires host, username, password and to")
		}
	case "webhook":
		if c.SocGuard.Notify.Webhook.URL == "" {
			return fmt.Errorf("config: webhook notify mode requires a url")
		}
	case "log":
	default:
		return fmt.Errorf("config: unknown notify mode %q", c.SocGuard.Notify.Mode)
	}

	switch c.SocGuard.Executor.Mode {
	case "http":
		if c.SocGuard.Executor.BaseURL == "" || c.SocGuard.Executor.Token == "" {
			return fmt.Errorf("config: http executor mode requires base_url and token")
		}
	case "dryrun":
	default:
		return fmt.Errorf("config: unknown executor mode %q", c.SocGuard.Executor.Mode)
	}

	switch c.SocGuard.Input.Mode {
	case "file", "redis":
	default:
		return fmt.Errorf("config: unknown input mode %q", c.SocGuard.Input.Mode)
	}

	return nil
}
