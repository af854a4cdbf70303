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

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Analytics
	Analytics AnalyticsConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// ProviderConfig selects and configures the upstream market data source
type ProviderConfig struct {
	Kind          string // alpaca, proxy
	APIKeyID      string
	APISecretKey  string
	Paper         bool
	ProxyURL      string
	RateLimit     float64 // requests per second, 0 disables limiting
	HistoryPeriod string
	Timeout       time.Duration
}

// AnalyticsConfig holds the knobs of the performance pipeline
type AnalyticsConfig struct {
	BenchmarkSymbol   string
	RefreshInterval   time.Duration
	DefaultRange      string
	RiskFreeRate      float64 // annual, fractional
	AnnualTargetPct   float64
	ProjectStart      string // YYYY-MM-DD
	FundingThreshold  float64
	BenchmarkLeadDays int
	MarketTimezone    string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "60s"),
		},

		Provider: ProviderConfig{
			Kind:          strings.ToLower(getEnv("PROVIDER", "alpaca")),
			APIKeyID:      getEnv("APCA_API_KEY_ID", ""),
			APISecretKey:  getEnv("APCA_API_SECRET_KEY", ""),
			Paper:         getEnvAsBool("APCA_PAPER", true),
			ProxyURL:      getEnv("PROXY_URL", ""),
			RateLimit:     getEnvAsFloat("PROVIDER_RATE_LIMIT", 3),
			HistoryPeriod: getEnv("HISTORY_PERIOD", "1A"),
			Timeout:       getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
		},

		Analytics: AnalyticsConfig{
			BenchmarkSymbol:   strings.ToUpper(getEnv("BENCHMARK_SYMBOL", "SPY")),
			RefreshInterval:   getEnvAsDuration("REFRESH_INTERVAL", "60s"),
			DefaultRange:      strings.ToUpper(getEnv("DEFAULT_RANGE", "1Y")),
			RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0.04),
			AnnualTargetPct:   getEnvAsFloat("ANNUAL_TARGET_PCT", 50),
			ProjectStart:      getEnv("PROJECT_START", "2025-12-12"),
			FundingThreshold:  getEnvAsFloat("FUNDING_THRESHOLD", 500),
			BenchmarkLeadDays: getEnvAsInt("BENCHMARK_LEAD_DAYS", 5),
			MarketTimezone:    getEnv("MARKET_TIMEZONE", "America/New_York"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Provider.Kind {
	case "alpaca":
		if c.Provider.APIKeyID == "" || c.Provider.APISecretKey == "" {
			return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY are required for the alpaca provider")
		}
	case "proxy":
		if c.Provider.ProxyURL == "" {
			return fmt.Errorf("PROXY_URL is required for the proxy provider")
		}
	default:
		return fmt.Errorf("PROVIDER must be one of: alpaca, proxy")
	}

	if c.Analytics.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1s")
	}

	if _, err := time.Parse("2006-01-02", c.Analytics.ProjectStart); err != nil {
		return fmt.Errorf("PROJECT_START must be YYYY-MM-DD: %w", err)
	}

	if c.Analytics.BenchmarkLeadDays < 0 {
		return fmt.Errorf("BENCHMARK_LEAD_DAYS must not be negative")
	}

	return nil
}

// Location returns the market timezone, falling back to UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.MarketTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
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
