package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the tpfetch CLI.
type Config struct {
	Storage       string        `yaml:"storage"`
	Catalog       string        `yaml:"catalog"`
	Report        string        `yaml:"report"`
	Formats       []string      `yaml:"formats"`
	Quota         int           `yaml:"quota"`
	Workers       int           `yaml:"workers"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	SnapshotEvery int           `yaml:"snapshot_every"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	RateLimit     float64       `yaml:"rate_limit"`
	UserAgent     string        `yaml:"user_agent"`
	Progress      bool          `yaml:"progress"`
	TUI           bool          `yaml:"tui"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:       16,
		PollInterval:  100 * time.Millisecond,
		SnapshotEvery: 500,
		FetchTimeout:  15 * time.Minute,
	}
}

// formatList accepts either a comma-separated string or a YAML sequence.
type formatList []string

func (f *formatList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*f = ParseFormats(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*f = ParseFormats(strings.Join(list, ","))
		return nil
	default:
		return fmt.Errorf("line %d: formats must be a string or a list", value.Line)
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Storage       string     `yaml:"storage"`
	Catalog       string     `yaml:"catalog"`
	Report        string     `yaml:"report"`
	Formats       formatList `yaml:"formats"`
	Quota         int        `yaml:"quota"`
	Workers       int        `yaml:"workers"`
	PollInterval  string     `yaml:"poll_interval"`
	SnapshotEvery int        `yaml:"snapshot_every"`
	FetchTimeout  string     `yaml:"fetch_timeout"`
	RateLimit     float64    `yaml:"rate_limit"`
	UserAgent     string     `yaml:"user_agent"`
	Progress      bool       `yaml:"progress"`
	TUI           bool       `yaml:"tui"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Storage != "" {
		cfg.Storage = yc.Storage
	}
	if yc.Catalog != "" {
		cfg.Catalog = yc.Catalog
	}
	if yc.Report != "" {
		cfg.Report = yc.Report
	}
	if len(yc.Formats) > 0 {
		cfg.Formats = yc.Formats
	}
	if yc.Quota != 0 {
		cfg.Quota = yc.Quota
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.PollInterval != "" {
		d, err := time.ParseDuration(yc.PollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if yc.SnapshotEvery != 0 {
		cfg.SnapshotEvery = yc.SnapshotEvery
	}
	if yc.FetchTimeout != "" {
		d, err := time.ParseDuration(yc.FetchTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse fetch_timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if yc.RateLimit != 0 {
		cfg.RateLimit = yc.RateLimit
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	cfg.Progress = yc.Progress
	cfg.TUI = yc.TUI

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the TPFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("TPFETCH_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("TPFETCH_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv("TPFETCH_REPORT"); v != "" {
		c.Report = v
	}
	if v := os.Getenv("TPFETCH_FORMATS"); v != "" {
		c.Formats = ParseFormats(v)
	}
	if v := os.Getenv("TPFETCH_QUOTA"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_QUOTA: %w", err)
		}
		c.Quota = n
	}
	if v := os.Getenv("TPFETCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("TPFETCH_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	if v := os.Getenv("TPFETCH_SNAPSHOT_EVERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_SNAPSHOT_EVERY: %w", err)
		}
		c.SnapshotEvery = n
	}
	if v := os.Getenv("TPFETCH_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv("TPFETCH_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse TPFETCH_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := os.Getenv("TPFETCH_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("TPFETCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("TPFETCH_TUI"); v != "" {
		c.TUI = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage == "" {
		return errors.New("config: storage is required")
	}
	if c.Catalog == "" {
		return errors.New("config: catalog is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Quota < 0 {
		return errors.New("config: quota must not be negative")
	}
	if c.PollInterval <= 0 {
		return errors.New("config: poll_interval must be positive")
	}
	if c.SnapshotEvery <= 0 {
		return errors.New("config: snapshot_every must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: fetch_timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("config: rate_limit must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Storage != "" {
		c.Storage = override.Storage
	}
	if override.Catalog != "" {
		c.Catalog = override.Catalog
	}
	if override.Report != "" {
		c.Report = override.Report
	}
	if len(override.Formats) > 0 {
		c.Formats = override.Formats
	}
	if override.Quota != 0 {
		c.Quota = override.Quota
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.PollInterval != 0 {
		c.PollInterval = override.PollInterval
	}
	if override.SnapshotEvery != 0 {
		c.SnapshotEvery = override.SnapshotEvery
	}
	if override.FetchTimeout != 0 {
		c.FetchTimeout = override.FetchTimeout
	}
	if override.RateLimit != 0 {
		c.RateLimit = override.RateLimit
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.TUI {
		c.TUI = override.TUI
	}
	return c
}

// BucketURL returns Storage as a bucket URL. A plain directory becomes a
// file:// URL that creates the directory on first use.
func (c *Config) BucketURL() (string, error) {
	if strings.Contains(c.Storage, "://") {
		return c.Storage, nil
	}
	abs, err := filepath.Abs(c.Storage)
	if err != nil {
		return "", fmt.Errorf("resolve storage path: %w", err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "create_dir=true",
	}
	return u.String(), nil
}

// ParseFormats splits a comma-separated format list, lower-casing and
// dropping empty entries.
func ParseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
