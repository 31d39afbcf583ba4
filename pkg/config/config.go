package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported provider and report store names
const (
	ProviderYahoo    = "yahoo"
	ProviderAlpaca   = "alpaca"
	ProviderPostgres = "postgres"

	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all configuration for the scanner service
// ⭐ SSOT: environment variables are read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Scan     ScanConfig
	Report   ReportConfig

	// StrategyFile points at the YAML scoring parameters. Empty means built-in defaults.
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig selects and configures the time-series provider
type ProviderConfig struct {
	Name      string // yahoo, alpaca, postgres
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	// WriteThrough stores fetched bars in Postgres when a database is configured
	WriteThrough bool
}

// ScanConfig holds market scan settings
type ScanConfig struct {
	LookbackDays int
	Concurrency  int
	CacheTTL     time.Duration
	Schedule     string // cron spec with seconds
	Tickers      []string
}

// ReportConfig selects where scan reports are persisted
type ReportConfig struct {
	Store      string // none, postgres, sqlite
	SQLitePath string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Provider: ProviderConfig{
			Name:         strings.ToLower(getEnv("PROVIDER", ProviderYahoo)),
			BaseURL:      getEnv("PROVIDER_BASE_URL", ""),
			APIKey:       getEnv("PROVIDER_API_KEY", ""),
			APISecret:    getEnv("PROVIDER_API_SECRET", ""),
			Timeout:      getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			RateLimit:    getEnvAsFloat("PROVIDER_RATE_LIMIT", 2),
			WriteThrough: getEnvAsBool("PROVIDER_WRITE_THROUGH", false),
		},

		Scan: ScanConfig{
			LookbackDays: getEnvAsInt("SCAN_LOOKBACK_DAYS", 180),
			Concurrency:  getEnvAsInt("SCAN_CONCURRENCY", 1),
			CacheTTL:     getEnvAsDuration("SCAN_CACHE_TTL", "1h"),
			Schedule:     getEnv("SCAN_SCHEDULE", "0 30 18 * * 1-5"),
			Tickers:      getEnvAsList("SCAN_TICKERS"),
		},

		Report: ReportConfig{
			Store:      strings.ToLower(getEnv("REPORT_STORE", StoreNone)),
			SQLitePath: getEnv("REPORT_SQLITE_PATH", "swing.db"),
		},

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// NeedsDatabase reports whether any configured component requires PostgreSQL
func (c *Config) NeedsDatabase() bool {
	return c.Provider.Name == ProviderPostgres ||
		c.Report.Store == StorePostgres ||
		c.Provider.WriteThrough
}

// LookbackWindow converts the configured day count into a duration
func (c *Config) LookbackWindow() time.Duration {
	return time.Duration(c.Scan.LookbackDays) * 24 * time.Hour
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Provider.Name {
	case ProviderYahoo, ProviderPostgres:
	case ProviderAlpaca:
		if c.Provider.APIKey == "" || c.Provider.APISecret == "" {
			return fmt.Errorf("PROVIDER_API_KEY and PROVIDER_API_SECRET are required for alpaca")
		}
	default:
		return fmt.Errorf("PROVIDER must be one of: yahoo, alpaca, postgres")
	}

	switch c.Report.Store {
	case StoreNone, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("REPORT_STORE must be one of: none, postgres, sqlite")
	}

	if c.NeedsDatabase() && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for provider %q / store %q", c.Provider.Name, c.Report.Store)
	}

	if c.Scan.LookbackDays <= 0 {
		return fmt.Errorf("SCAN_LOOKBACK_DAYS must be positive")
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("SCAN_CONCURRENCY must be at least 1")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
