package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends selectable via Config.Store.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ICSSource describes one subscribed ICS calendar feed.
type ICSSource struct {
	// ID is an internal identifier used for event ids and logging.
	ID string `yaml:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name"`
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url"`
}

// StoreConfig selects and configures the durable key-value backend.
type StoreConfig struct {
	Backend       string `yaml:"backend"`
	SQLiteDSN     string `yaml:"sqlite_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// ReminderConfig tunes the evaluation engine.
type ReminderConfig struct {
	// TickInterval is how often events are re-evaluated.
	TickInterval time.Duration `yaml:"tick_interval"`
	// DigestHour is the local hour (0-23) after which the daily summary may fire.
	DigestHour int `yaml:"digest_hour"`
	// NotificationLimit caps the persisted notification list.
	NotificationLimit int `yaml:"notification_limit"`
	// LedgerKeyLimit caps fired reminder keys retained per event.
	LedgerKeyLimit int `yaml:"ledger_key_limit"`
}

// ICSImportConfig tunes the calendar subscription import.
type ICSImportConfig struct {
	// HorizonDays bounds RRULE expansion into the future.
	HorizonDays int         `yaml:"horizon_days"`
	Sources     []ICSSource `yaml:"sources"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen   string          `yaml:"listen"`
	LogLevel string          `yaml:"log_level"`
	Store    StoreConfig     `yaml:"store"`
	Reminder ReminderConfig  `yaml:"reminder"`
	ICS      ICSImportConfig `yaml:"ics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend:   BackendSQLite,
			SQLiteDSN: "file:planner.db?_pragma=busy_timeout(5000)",
			RedisAddr: "127.0.0.1:6379",
		},
		Reminder: ReminderConfig{
			TickInterval:      time.Minute,
			DigestHour:        21,
			NotificationLimit: 200,
			LedgerKeyLimit:    64,
		},
		ICS: ICSImportConfig{
			HorizonDays: 366,
		},
	}
}

// Load reads the YAML config file at path (missing file means defaults),
// applies PLANNER_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults apply when no file is present.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	invalid := make([]string, 0, 2)

	if v := strings.TrimSpace(os.Getenv("PLANNER_LISTEN")); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_STORE_BACKEND")); v != "" {
		cfg.Store.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); v != "" {
		cfg.Store.SQLiteDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_REDIS_ADDR")); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_REDIS_PASSWORD")); v != "" {
		cfg.Store.RedisPassword = v
	}

	if v := strings.TrimSpace(os.Getenv("PLANNER_TICK_INTERVAL")); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "PLANNER_TICK_INTERVAL")
		} else {
			cfg.Reminder.TickInterval = interval
		}
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_DIGEST_HOUR")); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "PLANNER_DIGEST_HOUR")
		} else {
			cfg.Reminder.DigestHour = hour
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("config: invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func (c Config) validate() error {
	problems := make([]string, 0, 2)

	switch c.Store.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be %s, %s or %s", BackendMemory, BackendSQLite, BackendRedis))
	}

	if c.Reminder.TickInterval <= 0 {
		problems = append(problems, "reminder.tick_interval must be positive")
	}
	if c.Reminder.DigestHour < 0 || c.Reminder.DigestHour > 23 {
		problems = append(problems, "reminder.digest_hour must be between 0 and 23")
	}
	if c.ICS.HorizonDays <= 0 {
		problems = append(problems, "ics.horizon_days must be positive")
	}
	for _, src := range c.ICS.Sources {
		if strings.TrimSpace(src.URL) == "" {
			problems = append(problems, "ics.sources entries require a url")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
