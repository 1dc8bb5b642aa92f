// Package config handles loading and managing KlinScore configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for KlinScore.
type Config struct {
	Language string        `yaml:"language"` // "en" or "de"
	Scores   ScoresConfig  `yaml:"scores"`
	History  HistoryConfig `yaml:"history"`
	Cache    CacheConfig   `yaml:"cache"`
	Server   ServerConfig  `yaml:"server"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ScoresConfig controls where definitions come from.
type ScoresConfig struct {
	Dir string `yaml:"dir"` // empty means the built-in definitions
}

// HistoryConfig controls where calculation records are kept.
type HistoryConfig struct {
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
}

// StorageConfig selects the blob backend for calculation records.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, s3, gcs
	LocalDir  string `yaml:"local_dir"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoint (MinIO, R2)
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// DatabaseConfig selects the history index database.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // sqlite or postgres
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

// CacheConfig controls the record cache.
type CacheConfig struct {
	Size          int    `yaml:"size"`
	TTLSeconds    int    `yaml:"ttl_seconds"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port   string `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// LoggingConfig controls service logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		History: HistoryConfig{
			Storage: StorageConfig{
				Backend:  "local",
				LocalDir: RecordDir(),
			},
			Database: DatabaseConfig{
				Driver:     "sqlite",
				SQLitePath: filepath.Join(DataDir(), "history.db"),
			},
		},
		Cache: CacheConfig{
			Size:       256,
			TTLSeconds: 3600,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backend and driver names.
func (c *Config) Validate() error {
	switch c.Language {
	case "en", "de":
	default:
		return fmt.Errorf("config: unknown language %q (expected en or de)", c.Language)
	}
	switch c.History.Storage.Backend {
	case "local", "s3", "gcs":
	default:
		return fmt.Errorf("config: unknown storage backend %q (expected local, s3 or gcs)", c.History.Storage.Backend)
	}
	if c.History.Storage.Backend != "local" && c.History.Storage.Bucket == "" {
		return fmt.Errorf("config: storage backend %s requires a bucket", c.History.Storage.Backend)
	}
	switch c.History.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown database driver %q (expected sqlite or postgres)", c.History.Database.Driver)
	}
	if c.History.Database.Driver == "postgres" && c.History.Database.DSN == "" {
		return fmt.Errorf("config: postgres requires a dsn")
	}
	return nil
}

// ApplyEnv overrides config values from KLINSCORE_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Language, "KLINSCORE_LANGUAGE")
	set(&c.Scores.Dir, "KLINSCORE_SCORES_DIR")
	set(&c.Server.Port, "KLINSCORE_PORT")
	set(&c.Server.APIKey, "KLINSCORE_API_KEY")
	set(&c.History.Database.Driver, "KLINSCORE_DB_DRIVER")
	set(&c.History.Database.DSN, "KLINSCORE_DATABASE_URL")
	set(&c.History.Database.SQLitePath, "KLINSCORE_SQLITE_PATH")
	set(&c.History.Storage.Backend, "KLINSCORE_STORAGE_BACKEND")
	set(&c.History.Storage.LocalDir, "KLINSCORE_STORAGE_DIR")
	set(&c.History.Storage.Bucket, "KLINSCORE_BUCKET")
	set(&c.History.Storage.Region, "KLINSCORE_REGION")
	set(&c.History.Storage.Endpoint, "KLINSCORE_S3_ENDPOINT")
	set(&c.History.Storage.AccessKey, "KLINSCORE_S3_ACCESS_KEY")
	set(&c.History.Storage.SecretKey, "KLINSCORE_S3_SECRET_KEY")
	set(&c.Cache.RedisAddr, "KLINSCORE_REDIS_ADDR")
	set(&c.Cache.RedisPassword, "KLINSCORE_REDIS_PASSWORD")
	set(&c.Logging.Level, "KLINSCORE_LOG_LEVEL")
	set(&c.Logging.Format, "KLINSCORE_LOG_FORMAT")
	if v := getenv("KLINSCORE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.Size = n
		}
	}
}

// FindConfigFile looks for .klinscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".klinscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DataDir returns the per-user data directory, ~/.local/share/klinscore.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "share", "klinscore")
}

// RecordDir returns the default local directory for calculation records.
func RecordDir() string {
	return filepath.Join(DataDir(), "records")
}

// ExportDir returns the default directory for exported results.
func ExportDir() string {
	return filepath.Join(DataDir(), "exports")
}
