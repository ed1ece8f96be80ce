package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Baseline lookup policies for period-return calculations.
const (
	BaselineExact        = "exact"
	BaselineNearestPrior = "nearest-prior"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Market   MarketConfig
	Cache    CacheConfig
	Snapshot SnapshotConfig
	CORS     CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// MarketConfig holds upstream market-data provider configuration.
// APIKey may be empty at startup; the developer endpoint can store a
// fernet-encrypted token in the database instead.
type MarketConfig struct {
	BaseURL           string
	APIKey            string
	FernetKey         string
	FetchTimeout      time.Duration
	CallsPerMinute    int
	AllowNegativeCash bool
}

// CacheConfig holds quote-cache tuning.
type CacheConfig struct {
	TTL             time.Duration
	CleanupMaxAge   time.Duration
	CleanupSchedule string
}

// SnapshotConfig holds balance-history snapshot configuration.
type SnapshotConfig struct {
	Schedule       string
	BaselinePolicy string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_engine.db"),
		},
		Market: MarketConfig{
			BaseURL:           getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			APIKey:            getEnv("FINNHUB_API_KEY", ""),
			FernetKey:         getEnv("FERNET_KEY", ""),
			FetchTimeout:      getDuration("MARKET_FETCH_TIMEOUT", 10*time.Second),
			CallsPerMinute:    getInt("MARKET_CALLS_PER_MINUTE", 60),
			AllowNegativeCash: getBool("ALLOW_NEGATIVE_CASH", false),
		},
		Cache: CacheConfig{
			TTL:             getDuration("QUOTE_CACHE_TTL", 5*time.Minute),
			CleanupMaxAge:   getDuration("QUOTE_CACHE_MAX_AGE", 24*time.Hour),
			CleanupSchedule: getEnv("QUOTE_CACHE_CLEANUP_SCHEDULE", "*/15 * * * *"),
		},
		Snapshot: SnapshotConfig{
			Schedule:       getEnv("SNAPSHOT_SCHEDULE", "10 21 * * *"),
			BaselinePolicy: getEnv("BASELINE_POLICY", BaselineExact),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	if config.Snapshot.BaselinePolicy != BaselineExact && config.Snapshot.BaselinePolicy != BaselineNearestPrior {
		return nil, fmt.Errorf("invalid BASELINE_POLICY %q", config.Snapshot.BaselinePolicy)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getInt gets an integer environment variable or returns a default value
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getBool gets a boolean environment variable or returns a default value
func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getDuration gets a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
