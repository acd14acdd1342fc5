package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Cache backends understood by CACHE_BACKEND
const (
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

type Config struct {
	ServerPort string
	APIKey     string

	Airstack UpstreamConfig
	Neynar   UpstreamConfig
	Warpcast UpstreamConfig

	Cache   CacheConfig
	Logging LoggingConfig

	MetricsReportInterval time.Duration
}

// UpstreamConfig describes one outbound API
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CacheConfig holds the key-value cache backend settings
type CacheConfig struct {
	Backend       string
	RedisHost     string
	RedisPort     int
	RedisUsername string
	RedisPassword string
	RedisProtocol string
	RedisDB       int
	DatabaseURL   string
	MemoryMaxSize int
	Timeout       time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig reads the process environment (and .env when present) once at startup.
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	upstreamTimeout := getEnvSeconds("UPSTREAM_TIMEOUT_SECONDS", 10*time.Second)

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", getEnv("PORT", "4000")),
		APIKey:     getEnv("API_KEY", ""),
		Airstack: UpstreamConfig{
			BaseURL: getEnv("AIRSTACK_API_URL", "https://api.airstack.xyz/gql"),
			APIKey:  getEnv("AIRSTACK_API_KEY", ""),
			Timeout: upstreamTimeout,
		},
		Neynar: UpstreamConfig{
			BaseURL: getEnv("NEYNAR_API_URL", "https://api.neynar.com"),
			APIKey:  getEnv("NEYNAR_API_KEY", ""),
			Timeout: upstreamTimeout,
		},
		Warpcast: UpstreamConfig{
			BaseURL: getEnv("WARPCAST_API_URL", "https://api.warpcast.com"),
			Timeout: upstreamTimeout,
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendRedis)),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnvInt("REDIS_PORT", 6379),
			RedisUsername: getEnv("REDIS_USERNAME", "default"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisProtocol: getEnv("REDIS_PROTOCOL", "redis"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			DatabaseURL:   getEnv("DATABASE_URL", ""),
			MemoryMaxSize: getEnvInt("MEMORY_CACHE_MAX_SIZE", 10000),
			Timeout:       getEnvSeconds("CACHE_TIMEOUT_SECONDS", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MetricsReportInterval: time.Duration(getEnvInt("METRICS_REPORT_MINUTES", 15)) * time.Minute,
	}

	cfg.ValidateAndApplyDefaults()
	return cfg
}

// ValidateAndApplyDefaults replaces out-of-range values with defaults.
func (c *Config) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "Config")

	for _, upstream := range []*UpstreamConfig{&c.Airstack, &c.Neynar, &c.Warpcast} {
		upstream.BaseURL = strings.TrimRight(upstream.BaseURL, "/")
		if upstream.Timeout <= 0 {
			upstream.Timeout = 10 * time.Second
			logger.Debug("Applied default upstream timeout")
		}
	}

	if c.Cache.Timeout <= 0 {
		c.Cache.Timeout = 2 * time.Second
		logger.Debug("Applied default Cache.Timeout")
	}

	if c.Cache.MemoryMaxSize <= 0 {
		c.Cache.MemoryMaxSize = 10000
		logger.Debug("Applied default Cache.MemoryMaxSize")
	}

	if c.MetricsReportInterval <= 0 {
		c.MetricsReportInterval = 15 * time.Minute
		logger.Debug("Applied default MetricsReportInterval")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate reports every missing secret or unusable setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY must be set"))
	}
	if c.Airstack.APIKey == "" {
		errs = append(errs, errors.New("AIRSTACK_API_KEY must be set"))
	}
	if c.Neynar.APIKey == "" {
		errs = append(errs, errors.New("NEYNAR_API_KEY must be set"))
	}

	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	case CacheBackendPostgres:
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set when CACHE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}

	return errors.Join(errs...)
}

// RedisAddr returns host:port for the redis backend
func (c CacheConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %d", key, raw, fallback)
		return fallback
	}

	return value
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	seconds := getEnvInt(key, int(fallback/time.Second))
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
