package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the ScanPilot CLI.
//
// Units: all intervals are time.Duration.
type Config struct {
	APIBaseURL        string
	PollInterval      time.Duration
	PollTimeout       time.Duration
	RequestTimeout    time.Duration
	TokenSafetyMargin time.Duration
	RequestsPerSecond float64 // 0 disables the client-side limiter
	DBPath            string
	LogLevel          string
	ExportDir         string
	S3                S3Config
}

// S3Config configures result export to an S3-compatible bucket. Export goes
// to ExportDir unless Bucket is set.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

var ErrInvalidConfig = errors.New("invalid config")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.PollInterval = 2 * time.Second
	c.PollTimeout = 2 * time.Minute
	c.RequestTimeout = 30 * time.Second
	c.TokenSafetyMargin = 5 * time.Second
	c.RequestsPerSecond = 0
	c.DBPath = "scanpilot.db"
	c.LogLevel = "info"
	c.ExportDir = "exports"
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api url %q must be an absolute http(s) URL", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.PollTimeout < c.PollInterval {
		return fmt.Errorf("%w: poll timeout %s is shorter than the poll interval %s", ErrInvalidConfig, c.PollTimeout, c.PollInterval)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db path is empty", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and an optional .env file), JSON (if present) and
// command-line flags (if present). Later sources take precedence over
// earlier ones. It panics on unreadable sources or an invalid result.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, args, os.LookupEnv)
	parseJson(cfg, args)
	parseFlags(cfg, args)

	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
