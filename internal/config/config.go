// Package config reads the runtime configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	// HTTP server
	APIURL      string
	Port        string
	CORSOrigins []string
	EnablePprof bool

	// Database
	DatabaseFile string

	// Cache
	CacheBackend string
	CacheTTL     time.Duration
	CacheSize    int
	RedisAddress string
	RedisDB      int

	// Calendar and display
	Timezone string
	Locale   string
}

// Load reads an optional .env file and then the environment.
//
// Values already set in the environment take precedence over the file.
func Load() *Config {
	// A missing .env file is not an error, it is only a convenience for development
	_ = godotenv.Load()

	var origins []string
	if value := os.Getenv("CORS_ALLOW_ORIGINS"); value != "" {
		origins = strings.Fields(value)
	}

	return &Config{
		APIURL:      getEnv("API_URL", ""),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: origins,
		EnablePprof: getEnvBool("ENABLE_PPROF", false),

		DatabaseFile: getEnv("DATABASE_FILE", "data/gorm.db"),

		CacheBackend: getEnv("CACHE_BACKEND", CacheMemory),
		CacheTTL:     getEnvDuration("CACHE_TTL", time.Hour),
		CacheSize:    getEnvInt("CACHE_SIZE", 512),
		RedisAddress: getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),

		Timezone: getEnv("TIMEZONE", "UTC"),
		Locale:   getEnv("LOCALE", "en"),
	}
}

// Validate validates the configuration and returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errors []string

	if c.APIURL == "" {
		errors = append(errors, "API_URL must be set to the external URL of the API")
	} else if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API_URL '%s': must be an absolute URL", c.APIURL))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseFile == "" {
		errors = append(errors, "DATABASE_FILE cannot be empty")
	}

	switch c.CacheBackend {
	case CacheMemory:
		if c.CacheSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
		}
	case CacheRedis:
		if c.RedisAddress == "" {
			errors = append(errors, "REDIS_ADDRESS is required when using the redis cache backend")
		}
	case CacheNone:
	default:
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of [%s %s %s]", c.CacheBackend, CacheMemory, CacheRedis, CacheNone))
	}

	if c.CacheBackend != CacheNone && c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if _, err := language.Parse(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the time zone "today" is computed in.
//
// It falls back to UTC for an invalid zone, Validate reports those.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Language returns the display language tag.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
