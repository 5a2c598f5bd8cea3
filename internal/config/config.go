package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider type values recognized by the batch runner. Anything else in an
// organization entry is skipped at run time.
const (
	ProviderGreenhouse = "greenhouse"
	ProviderLever      = "lever"
)

// Config is the root configuration for the jobfeed service.
type Config struct {
	ListenAddr    string
	DBPath        string
	FetchTimeout  time.Duration
	RateLimit     RateLimitConfig
	Schedule      ScheduleConfig
	Organizations []OrganizationConfig
}

// ScheduleConfig sets the daily batch time. The timezone must be spelled
// out in the config file; the scheduler never falls back to the process's
// ambient zone.
type ScheduleConfig struct {
	Hour     int
	Minute   int
	Timezone string
	Location *time.Location // resolved from Timezone by Load
}

// RateLimitConfig controls outbound request pacing per provider host.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// OrganizationConfig describes a single board to poll.
type OrganizationConfig struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Provider string `yaml:"provider"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	ListenAddr    string               `yaml:"listen_addr"`
	DBPath        string               `yaml:"db_path"`
	FetchTimeout  string               `yaml:"fetch_timeout"`
	RateLimit     rawRateLimitConfig   `yaml:"rate_limit"`
	Schedule      rawScheduleConfig    `yaml:"schedule"`
	Organizations []OrganizationConfig `yaml:"organizations"`
}

type rawScheduleConfig struct {
	Hour     int    `yaml:"hour"`
	Minute   int    `yaml:"minute"`
	Timezone string `yaml:"timezone"`
}

type rawRateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		ListenAddr:    raw.ListenAddr,
		DBPath:        raw.DBPath,
		Organizations: raw.Organizations,
		Schedule: ScheduleConfig{
			Hour:     raw.Schedule.Hour,
			Minute:   raw.Schedule.Minute,
			Timezone: raw.Schedule.Timezone,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: raw.RateLimit.RequestsPerSecond,
			Burst:             raw.RateLimit.Burst,
		},
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "jobfeed.db"
	}

	cfg.FetchTimeout = 30 * time.Second // a stalled provider must not stall the run
	if raw.FetchTimeout != "" {
		cfg.FetchTimeout, err = time.ParseDuration(raw.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch_timeout %q: %w", raw.FetchTimeout, err)
		}
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 1
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	cfg.Schedule.Location, err = time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule.timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Schedule.Hour < 0 || cfg.Schedule.Hour > 23 {
		return fmt.Errorf("schedule.hour must be in [0,23], got %d", cfg.Schedule.Hour)
	}
	if cfg.Schedule.Minute < 0 || cfg.Schedule.Minute > 59 {
		return fmt.Errorf("schedule.minute must be in [0,59], got %d", cfg.Schedule.Minute)
	}
	if cfg.Schedule.Timezone == "" {
		return fmt.Errorf("schedule.timezone is required (e.g. \"America/New_York\" or \"UTC\")")
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", cfg.FetchTimeout)
	}

	if len(cfg.Organizations) == 0 {
		return fmt.Errorf("at least one organization must be configured")
	}
	for i, org := range cfg.Organizations {
		if org.Name == "" {
			return fmt.Errorf("organizations[%d].name is required", i)
		}
		if org.Slug == "" {
			return fmt.Errorf("organizations[%d].slug is required", i)
		}
	}

	return nil
}
