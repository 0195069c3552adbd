package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Backend API Configuration
	API APIConfig

	// Portal web server Configuration
	Server ServerConfig

	// Redis Configuration
	Redis RedisConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds the backend REST API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds the portal web server configuration
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	CookieSecure   bool
	SessionTTL     time.Duration // for sessions whose token carries no expiry
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	baseURL := strings.TrimRight(os.Getenv("PORTAL_API_BASE_URL"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("PORTAL_API_BASE_URL is required")
	}

	timeout, err := durationEnv("PORTAL_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := durationEnv("PORTAL_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	addr := os.Getenv("PORTAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	origins := []string{"http://localhost:5173"}
	if v := os.Getenv("PORTAL_ALLOWED_ORIGINS"); v != "" {
		origins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cookieSecure := true
	if v := os.Getenv("PORTAL_COOKIE_SECURE"); v != "" {
		cookieSecure, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORTAL_COOKIE_SECURE: %w", err)
		}
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		API: APIConfig{
			BaseURL: baseURL,
			Timeout: timeout,
		},
		Server: ServerConfig{
			Addr:           addr,
			AllowedOrigins: origins,
			CookieSecure:   cookieSecure,
			SessionTTL:     sessionTTL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
