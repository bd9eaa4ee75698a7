package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/matchups/internal/matchups"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig     `toml:"server"`
	Engine   matchups.Options `toml:"engine"`
	API      APIConfig        `toml:"api"`
	Snapshot SnapshotConfig   `toml:"snapshot"`
	Storage  StorageConfig    `toml:"storage"`
	Log      LogConfig        `toml:"log"`
}

// ServerConfig contains REST server settings.
type ServerConfig struct {
	Port           int    `toml:"port"`
	FrontendOrigin string `toml:"frontend_origin"` // Allowed CORS origin
}

// APIConfig contains stats backend settings.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	Token       string `toml:"token"` // Bearer token, optional
	GameType    string `toml:"game_type"`
	RankRange   string `toml:"rank_range"`
	TimeRange   string `toml:"time_range"`
	Region      string `toml:"region"`
	RateLimitMS int    `toml:"rate_limit_ms"` // Minimum gap between requests
	Timeout     string `toml:"timeout"`       // HTTP timeout (e.g., "30s")
	CacheTTL    string `toml:"cache_ttl"`     // Response cache TTL (e.g., "10m")

	// RefreshInterval refetches the tables periodically; "0s" disables it.
	RefreshInterval string `toml:"refresh_interval"`
}

// SnapshotConfig points at a directory of raw tables used instead of the API.
type SnapshotConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"` // Reload when files change
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // json or pretty
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxAgeDays int    `toml:"max_age_days"`
	MaxBackups int    `toml:"max_backups"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			FrontendOrigin: "http://localhost:5173",
		},
		Engine: matchups.DefaultOptions(),
		API: APIConfig{
			BaseURL:     "https://hsreplay.net",
			GameType:    "RANKED_STANDARD",
			RankRange:   "BRONZE_THROUGH_GOLD",
			TimeRange:   "LAST_7_DAYS",
			Region:      "ALL",
			RateLimitMS: 1000,
			Timeout:     "30s",
			CacheTTL:    "10m",

			RefreshInterval: "1h",
		},
		Storage: StorageConfig{
			Path: defaultDataPath("matchups.db"),
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "pretty",
			MaxSizeMB:  10,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
	}
}

func defaultDataPath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, ".matchups", name)
}

// DefaultPath returns ~/.matchups/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".matchups", "config.toml"), nil
}

// Load reads the TOML file at path (DefaultPath when empty), then applies a
// .env file and MATCHUPS_* environment overrides. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MATCHUPS_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MATCHUPS_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("MATCHUPS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MATCHUPS_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MATCHUPS_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("MATCHUPS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MATCHUPS_SNAPSHOT_DIR"); v != "" {
		c.Snapshot.Dir = v
	}
	return nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Engine.EligibilityThreshold < 0 {
		return fmt.Errorf("eligibility threshold cannot be negative: %d", c.Engine.EligibilityThreshold)
	}
	if c.Engine.PopularityCutoff < 0 {
		return fmt.Errorf("popularity cutoff cannot be negative: %g", c.Engine.PopularityCutoff)
	}

	if c.API.RateLimitMS < 0 {
		return fmt.Errorf("rate limit cannot be negative: %d", c.API.RateLimitMS)
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid API timeout %q: %w", c.API.Timeout, err)
	}
	if _, err := time.ParseDuration(c.API.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.API.CacheTTL, err)
	}

	if d, err := time.ParseDuration(c.API.RefreshInterval); err != nil || d < 0 {
		return fmt.Errorf("invalid refresh interval %q", c.API.RefreshInterval)
	}

	if c.Snapshot.Dir == "" && c.API.BaseURL == "" {
		return errors.New("either api.base_url or snapshot.dir must be set")
	}

	return nil
}

// APITimeout returns the API timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	d, _ := time.ParseDuration(c.API.Timeout)
	return d
}

// CacheTTL returns the API cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.API.CacheTTL)
	return d
}

// RefreshInterval returns the periodic refresh interval, 0 when disabled.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.API.RefreshInterval)
	return d
}

// RateLimit returns the minimum gap between API requests.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.API.RateLimitMS) * time.Millisecond
}
