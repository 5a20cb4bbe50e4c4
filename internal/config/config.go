package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/claude/athletconnect/internal/scoring"
)

// Catalog sources.
const (
	SourceFixtures = "fixtures"
	SourcePostgres = "postgres"
)

const defaultTimeoutSeconds = 10

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// CORSOrigin is the browser origin allowed to call the API; empty means any.
	CORSOrigin string `yaml:"cors_origin"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

// ScoringConfig points at the external scoring backend.
type ScoringConfig struct {
	BackendURL     string `yaml:"backend_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CatalogConfig selects where catalog data comes from.
type CatalogConfig struct {
	Source string `yaml:"source"`
	// Seed loads the embedded fixtures into Postgres on startup.
	Seed bool `yaml:"seed"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// LogConfig controls the server log. With File set, logs are also written
// to a size-rotated file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// SlogLevel parses Level; empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// UsesPostgres reports whether the catalog is served from the database.
func (c *Config) UsesPostgres() bool {
	return c.Catalog.Source == SourcePostgres
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix ATHLETCONNECT_ and underscore-separated paths:
//
//	ATHLETCONNECT_SERVER_HOST, ATHLETCONNECT_SERVER_PORT, ATHLETCONNECT_SERVER_CORS_ORIGIN,
//	ATHLETCONNECT_DB_HOST, ATHLETCONNECT_DB_PORT, ATHLETCONNECT_DB_NAME,
//	ATHLETCONNECT_DB_USER, ATHLETCONNECT_DB_PASSWORD, ATHLETCONNECT_DB_SSLMODE,
//	ATHLETCONNECT_SCORING_BACKEND_URL, ATHLETCONNECT_SCORING_TIMEOUT_SECONDS,
//	ATHLETCONNECT_CATALOG_SOURCE, ATHLETCONNECT_TAILSCALE_ENABLED,
//	ATHLETCONNECT_LOG_LEVEL, ATHLETCONNECT_LOG_FILE
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
	if v := os.Getenv("ATHLETCONNECT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ATHLETCONNECT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ATHLETCONNECT_SERVER_CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}
	if v := os.Getenv("ATHLETCONNECT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("ATHLETCONNECT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("ATHLETCONNECT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("ATHLETCONNECT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("ATHLETCONNECT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("ATHLETCONNECT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("ATHLETCONNECT_SCORING_BACKEND_URL"); v != "" {
		cfg.Scoring.BackendURL = v
	}
	if v := os.Getenv("ATHLETCONNECT_SCORING_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("ATHLETCONNECT_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("ATHLETCONNECT_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("ATHLETCONNECT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ATHLETCONNECT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Scoring.BackendURL == "" {
		cfg.Scoring.BackendURL = scoring.DefaultBackendURL
	}
	if cfg.Scoring.TimeoutSeconds == 0 {
		cfg.Scoring.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = SourceFixtures
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "athletconnect"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Scoring.TimeoutSeconds < 0 {
		return fmt.Errorf("scoring.timeout_seconds must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Catalog.Source {
	case SourceFixtures:
	case SourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceFixtures, SourcePostgres, c.Catalog.Source)
	}
	return nil
}
