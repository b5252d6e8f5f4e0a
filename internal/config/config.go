package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerAddr string
	// PublicURL, when set, takes precedence over request headers when
	// building the verification URI handed to the CLI.
	PublicURL    string
	FallbackURL  string
	IsProduction bool

	// Session settings (browser session cookie)
	SessionSecret string
	SessionMaxAge int // seconds

	// Device authorization settings
	DeviceCodeExpiration time.Duration // lifetime of a pending code
	PollingInterval      time.Duration // advertised minimum poll interval
	UserCodeLength       int

	// CLI session settings
	CliSessionLifetime time.Duration

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	// Redis (rate limiting and the user profile cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting (IP-level, on unauthenticated endpoints)
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitStore     string // "memory" or "redis"

	// Cache
	CacheBackend  string // "memory" or "redis"
	CacheUserTTL  time.Duration
	CacheDisabled bool

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Housekeeping
	CleanupInterval time.Duration

	// Seeding
	DefaultAdminPassword string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "cliauth.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		PublicURL:    getEnv("PUBLIC_URL", ""),
		FallbackURL:  getEnv("FALLBACK_URL", "http://localhost:8080"),
		IsProduction: getEnv("GIN_MODE", "") == "release",

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400*7),

		DeviceCodeExpiration: getEnvDuration("DEVICE_CODE_EXPIRATION", 15*time.Minute),
		PollingInterval:      getEnvDuration("POLLING_INTERVAL", 5*time.Second),
		UserCodeLength:       getEnvInt("USER_CODE_LENGTH", 8),

		CliSessionLifetime: getEnvDuration("CLI_SESSION_LIFETIME", 90*24*time.Hour),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitStore:     getEnv("RATE_LIMIT_STORE", "memory"),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		CacheUserTTL:  getEnvDuration("CACHE_USER_TTL", 5*time.Minute),
		CacheDisabled: getEnvBool("CACHE_DISABLED", false),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),

		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}
}

// Validate checks settings that have no sane fallback.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
	}
	if c.DeviceCodeExpiration <= 0 {
		return fmt.Errorf("DEVICE_CODE_EXPIRATION must be positive")
	}
	if c.PollingInterval < 2*time.Second {
		return fmt.Errorf("POLLING_INTERVAL must be at least 2s")
	}
	if c.UserCodeLength < 6 {
		return fmt.Errorf("USER_CODE_LENGTH must be at least 6")
	}
	if c.CliSessionLifetime <= 0 {
		return fmt.Errorf("CLI_SESSION_LIFETIME must be positive")
	}
	if (c.RateLimitStore == "redis" || c.CacheBackend == "redis") && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when redis is selected as a backend")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
