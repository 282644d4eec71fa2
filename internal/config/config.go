package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultVaultPath     = "Gladion Vault"
	DefaultPort          = "8091"
	DefaultLogLevel      = "info"
	DefaultWatchDebounce = 300 * time.Millisecond
	DefaultStatsWindow   = time.Hour
)

type Config struct {
	// Vault root directory.
	VaultPath string

	// HTTP API
	Port   string
	APIKey string

	LogLevel string

	// report --watch
	WatchDebounce time.Duration

	// Styled terminal output
	Color bool

	// Rolling window for report latency stats
	StatsWindow time.Duration
}

// fileConfig mirrors Config in the TOML file. Nil fields were not set.
type fileConfig struct {
	VaultPath     *string `toml:"vault_path"`
	Port          *int    `toml:"port"`
	APIKey        *string `toml:"api_key"`
	LogLevel      *string `toml:"log_level"`
	WatchDebounce *string `toml:"watch_debounce"`
	Color         *bool   `toml:"color"`
	StatsWindow   *string `toml:"stats_window"`
}

// Load builds a Config from defaults, then the TOML file (if file is
// non-empty or VAULTLINT_CONFIG names one), then environment variables.
func Load(file string) (Config, error) {
	cfg := Config{
		VaultPath:     DefaultVaultPath,
		Port:          DefaultPort,
		LogLevel:      DefaultLogLevel,
		WatchDebounce: DefaultWatchDebounce,
		Color:         true,
		StatsWindow:   DefaultStatsWindow,
	}

	if file == "" {
		file = os.Getenv("VAULTLINT_CONFIG")
	}
	if file != "" {
		if err := cfg.loadFile(file); err != nil {
			return cfg, err
		}
	}

	cfg.VaultPath = envOr("VAULTLINT_VAULT_PATH", cfg.VaultPath)
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("VAULTLINT_API_KEY", cfg.APIKey)
	cfg.LogLevel = envOr("VAULTLINT_LOG_LEVEL", cfg.LogLevel)
	cfg.WatchDebounce = envDuration("VAULTLINT_WATCH_DEBOUNCE", cfg.WatchDebounce)
	cfg.Color = envBool("VAULTLINT_COLOR", cfg.Color)
	cfg.StatsWindow = envDuration("VAULTLINT_STATS_WINDOW", cfg.StatsWindow)

	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = false
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = DefaultStatsWindow
	}

	return cfg, nil
}

func (c *Config) loadFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", file, err)
	}

	if fc.VaultPath != nil {
		c.VaultPath = *fc.VaultPath
	}
	if fc.Port != nil {
		c.Port = strconv.Itoa(*fc.Port)
	}
	if fc.APIKey != nil {
		c.APIKey = *fc.APIKey
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.WatchDebounce != nil {
		d, err := time.ParseDuration(*fc.WatchDebounce)
		if err != nil {
			return fmt.Errorf("config %s: watch_debounce: %w", file, err)
		}
		c.WatchDebounce = d
	}
	if fc.Color != nil {
		c.Color = *fc.Color
	}
	if fc.StatsWindow != nil {
		d, err := time.ParseDuration(*fc.StatsWindow)
		if err != nil {
			return fmt.Errorf("config %s: stats_window: %w", file, err)
		}
		c.StatsWindow = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.VaultPath) == "" {
		errs = append(errs, fmt.Errorf("vault path is required"))
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
