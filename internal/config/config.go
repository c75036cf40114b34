// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// ScheduleConfig holds planning settings.
type ScheduleConfig struct {
	User         string `toml:"user"`           // owner of tasks and schedules
	AutoPlanTime string `toml:"auto_plan_time"` // e.g., "06:30", empty disables the cron job
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider       string `toml:"provider"` // "openai", "ollama", "lmstudio"
	Model          string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL        string `toml:"base_url"` // e.g., "http://localhost:11434"
	APIKey         string `toml:"api_key"`  // empty = read from environment
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Dir   string `toml:"dir"`
	Debug bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			User:         "local",
			AutoPlanTime: "",
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			BaseURL:        "",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Dir: defaultLogDir(),
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "blockday.db"
	}
	return filepath.Join(home, ".local", "share", "blockday", "blockday.db")
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return filepath.Join(home, ".local", "state", "blockday", "logs")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "blockday", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BLOCKDAY_USER"); v != "" {
		cfg.Schedule.User = v
	}
	if v := os.Getenv("BLOCKDAY_AUTO_PLAN_TIME"); v != "" {
		cfg.Schedule.AutoPlanTime = v
	}

	// LLM overrides
	if v := os.Getenv("BLOCKDAY_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("BLOCKDAY_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("BLOCKDAY_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("BLOCKDAY_LLM_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			cfg.LLM.TimeoutSeconds = seconds
		}
	}

	// Storage overrides
	if v := os.Getenv("BLOCKDAY_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	// Log overrides
	if v := os.Getenv("BLOCKDAY_LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
	if v := os.Getenv("BLOCKDAY_DEBUG"); v != "" {
		cfg.Log.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Schedule.User) == "" {
		return errors.New("schedule.user must be set")
	}
	if c.Schedule.AutoPlanTime != "" {
		if err := validateTime(c.Schedule.AutoPlanTime, "auto_plan_time"); err != nil {
			return err
		}
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds cannot be negative")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	hour := t[0:2]
	min := t[3:5]
	if !isDigits(hour) || !isDigits(min) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
