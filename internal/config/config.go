package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	HTTPAddr         string
	SiteURL          string
	Migrate          bool
	DB               DBConfig
	Redis            RedisConfig
	Cache            CacheConfig
	CacheSweeper     CacheSweeperConfig
	RedirectVerifier RedirectVerifierConfig
	RedirectCleaner  RedirectCleanerConfig
	DataDog          DataDogConfig
	Log              LogConfig
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver     string // mysql | sqlite
	DSN        string
	SQLitePath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig selects the sitemap cache backend
type CacheConfig struct {
	Driver string // file | redis
	Dir    string
}

// CacheSweeperConfig holds expired-cache sweeper configuration
type CacheSweeperConfig struct {
	Enabled     bool
	IntervalSec int
}

// RedirectVerifierConfig holds host-native redirect verifier configuration
type RedirectVerifierConfig struct {
	Enabled     bool
	IntervalSec int
	BatchSize   int
	TimeoutSec  int
	Concurrency int
}

// RedirectCleanerConfig holds redirect retention configuration
type RedirectCleanerConfig struct {
	Enabled       bool
	IntervalSec   int
	RetentionDays int
}

// DataDogConfig holds StatsD configuration
type DataDogConfig struct {
	Enabled bool
	Addr    string
	Prefix  string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // text | json
}

// source resolves a single value; ok is false when the key is absent.
type source func(envKey, section, key string) (string, bool)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return build(func(envKey, _, _ string) (string, bool) {
		v := os.Getenv(envKey)
		return v, v != ""
	})
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	_ = godotenv.Load()

	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	return build(func(envKey, section, key string) (string, bool) {
		if v := os.Getenv(envKey); v != "" {
			return v, true
		}
		if cfgFile.Section(section).HasKey(key) {
			if v := cfgFile.Section(section).Key(key).String(); v != "" {
				return v, true
			}
		}
		return "", false
	})
}

func build(get source) (*Config, error) {
	str := func(envKey, section, key, def string) string {
		if v, ok := get(envKey, section, key); ok {
			return v
		}
		return def
	}
	num := func(envKey, section, key string, def int) int {
		if v, ok := get(envKey, section, key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	flag := func(envKey, section, key string, def bool) bool {
		if v, ok := get(envKey, section, key); ok {
			return v == "1" || strings.EqualFold(v, "true")
		}
		return def
	}

	cfg := &Config{
		HTTPAddr: str("HTTP_ADDR", "http", "addr", ":8080"),
		SiteURL:  strings.TrimRight(str("SITE_URL", "site", "url", ""), "/"),
		Migrate:  flag("MIGRATE", "app", "migrate", false),
		DB: DBConfig{
			Driver:     str("DB_DRIVER", "db", "driver", "mysql"),
			DSN:        str("MYSQL_DSN", "db", "dsn", ""),
			SQLitePath: str("SQLITE_PATH", "db", "sqlite_path", "./data/polyseo.db"),
		},
		Redis: RedisConfig{
			Addr:     str("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: str("REDIS_PASS", "redis", "pass", ""),
			DB:       num("REDIS_DB", "redis", "db", 0),
		},
		Cache: CacheConfig{
			Driver: str("CACHE_DRIVER", "cache", "driver", "file"),
			Dir:    str("CACHE_DIR", "cache", "dir", "./data/sitemap-cache"),
		},
		CacheSweeper: CacheSweeperConfig{
			Enabled:     flag("CACHE_SWEEPER_ENABLED", "cache_sweeper", "enabled", true),
			IntervalSec: num("CACHE_SWEEPER_INTERVAL_SEC", "cache_sweeper", "interval_sec", 3600),
		},
		RedirectVerifier: RedirectVerifierConfig{
			Enabled:     flag("REDIRECT_VERIFIER_ENABLED", "redirect_verifier", "enabled", true),
			IntervalSec: num("REDIRECT_VERIFIER_INTERVAL_SEC", "redirect_verifier", "interval_sec", 3600),
			BatchSize:   num("REDIRECT_VERIFIER_BATCH_SIZE", "redirect_verifier", "batch_size", 10),
			TimeoutSec:  num("REDIRECT_VERIFIER_TIMEOUT_SEC", "redirect_verifier", "timeout_sec", 5),
			Concurrency: num("REDIRECT_VERIFIER_CONCURRENCY", "redirect_verifier", "concurrency", 2),
		},
		RedirectCleaner: RedirectCleanerConfig{
			Enabled:       flag("REDIRECT_CLEANER_ENABLED", "redirect_cleaner", "enabled", true),
			IntervalSec:   num("REDIRECT_CLEANER_INTERVAL_SEC", "redirect_cleaner", "interval_sec", 86400),
			RetentionDays: num("REDIRECT_CLEANER_RETENTION_DAYS", "redirect_cleaner", "retention_days", 90),
		},
		DataDog: DataDogConfig{
			Enabled: flag("DATADOG_ENABLED", "datadog", "enabled", false),
			Addr:    str("DATADOG_ADDR", "datadog", "addr", "127.0.0.1:8125"),
			Prefix:  str("DATADOG_PREFIX", "datadog", "prefix", "polyseo"),
		},
		Log: LogConfig{
			Level:  str("LOG_LEVEL", "log", "level", "info"),
			Format: str("LOG_FORMAT", "log", "format", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("SITE_URL is required")
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}

	switch c.DB.Driver {
	case "mysql":
		if c.DB.DSN == "" {
			return fmt.Errorf("MYSQL_DSN is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DB.Driver)
	}

	switch c.Cache.Driver {
	case "file", "redis":
	default:
		return fmt.Errorf("CACHE_DRIVER must be file or redis, got %q", c.Cache.Driver)
	}

	if c.RedirectVerifier.BatchSize <= 0 {
		c.RedirectVerifier.BatchSize = 10
	}
	if c.RedirectVerifier.Concurrency <= 0 {
		c.RedirectVerifier.Concurrency = 1
	}
	return nil
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	if c.DB.Driver == "sqlite" {
		return c.DB.SQLitePath
	}
	return c.DB.DSN
}
