// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Scoring  ScoringConfig
}

type ServerConfig struct {
	Host             string
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	RateLimitEnabled bool
	RateLimitPerMin  int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// ScoringConfig controls how the risk engine sources its rule configuration.
type ScoringConfig struct {
	CacheTTL       time.Duration
	AuditQueueSize int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             getEnv("SERVER_HOST", "0.0.0.0"),
			Port:             getEnv("SERVER_PORT", "8080"),
			ReadTimeout:      getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:     getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:      getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
			RateLimitPerMin:  getIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),
		},
		Scoring: ScoringConfig{
			CacheTTL:       getDurationEnv("SCORING_CACHE_TTL", 5*time.Minute),
			AuditQueueSize: getIntEnv("AUDIT_QUEUE_SIZE", 1024),
		},
	}
}

// ValidateCore checks the settings every service needs before it can start.
func (c *Config) ValidateCore() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "change-this-secret" {
		if os.Getenv("ALLOW_DEFAULT_JWT_SECRET") != "true" {
			return fmt.Errorf("JWT_SECRET must be set to a non-default value")
		}
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// normalizeRedisURL strips the scheme so the value can be handed to go-redis
// as a plain host:port address.
func normalizeRedisURL(url string) string {
	url = strings.TrimPrefix(url, "redis://")
	url = strings.TrimPrefix(url, "rediss://")
	if i := strings.Index(url, "@"); i >= 0 {
		url = url[i+1:]
	}
	return url
}
