package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperror "github.com/txgate/txgate/domain/error"
)

type Config struct {
	DatabaseURL      string
	DatabaseMaxConns int

	ServerPort  string
	ServerHost  string
	Environment string

	JWTSecret      string
	AccessTokenTTL time.Duration

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitAttempts      int
	RateLimitWindow        time.Duration
	RateLimitBlockDuration time.Duration

	// AuthzReloadInterval bounds cache/registry staleness after a crash
	// between the store write and the cache update; 0 disables the
	// periodic reload.
	AuthzReloadInterval time.Duration

	// PublicProfileID is the profile anonymous requests run under.
	PublicProfileID int64

	AuditBufferSize int

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseMaxConns: getEnvOrDefaultInt("DATABASE_MAX_CONNS", 20),

		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment: getEnvOrDefault("ENV", "development"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled: getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),

		PublicProfileID: int64(getEnvOrDefaultInt("PUBLIC_PROFILE_ID", 1)),
		AuditBufferSize: getEnvOrDefaultInt("AUDIT_BUFFER_SIZE", 256),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	accessTokenTTL, err := parseSeconds(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "900"))
	if err != nil {
		return nil, apperror.ErrConfigurationError("JWT_ACCESS_TOKEN_TTL")
	}
	cfg.AccessTokenTTL = accessTokenTTL

	reloadInterval, err := parseSeconds(getEnvOrDefault("AUTHZ_RELOAD_INTERVAL", "300"))
	if err != nil {
		return nil, apperror.ErrConfigurationError("AUTHZ_RELOAD_INTERVAL")
	}
	cfg.AuthzReloadInterval = reloadInterval

	cfg.RateLimitAttempts = getEnvOrDefaultInt("RATE_LIMIT_ATTEMPTS", 60)

	window, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_WINDOW", "60"))
	if err != nil {
		return nil, apperror.ErrConfigurationError("RATE_LIMIT_WINDOW")
	}
	cfg.RateLimitWindow = window

	blockDuration, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_BLOCK_DURATION", "1800"))
	if err != nil {
		return nil, apperror.ErrConfigurationError("RATE_LIMIT_BLOCK_DURATION")
	}
	cfg.RateLimitBlockDuration = blockDuration

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
