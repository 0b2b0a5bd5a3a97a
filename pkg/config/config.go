// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Parser        ParserConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the Postgres connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type AuthConfig struct {
	JWTSecret string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	ServiceName    string
}

type ProfilingConfig struct {
	Enabled bool
	Port    int
}

type ParserConfig struct {
	// Timezone is the IANA zone used for "today" and for dates without one.
	Timezone          string
	AIFallbackEnabled bool
	BatchWorkers      int
}

// Location resolves Timezone.
func (p ParserConfig) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "expenses"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
			ServiceName:    getEnv("SERVICE_NAME", "smart-expense-tracker"),
		},
		Profiling: ProfilingConfig{
			Enabled: getEnvBool("PPROF_ENABLED", false),
			Port:    getEnvInt("PPROF_PORT", 6060),
		},
		Parser: ParserConfig{
			Timezone:          getEnv("PARSER_TIMEZONE", "Asia/Kuala_Lumpur"),
			AIFallbackEnabled: getEnvBool("PARSER_AI_FALLBACK_ENABLED", false),
			BatchWorkers:      getEnvInt("PARSER_BATCH_WORKERS", runtime.GOMAXPROCS(0)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.RateLimitPerSecond < 0 || c.Server.RateLimitBurst < 0 {
		errors = append(errors, "rate limit settings cannot be negative")
	}

	if c.Database.Host == "" {
		errors = append(errors, "database host cannot be empty")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid database port %d: must be between 1 and 65535", c.Database.Port))
	}
	if c.Database.Name == "" {
		errors = append(errors, "database name cannot be empty")
	}

	if c.Profiling.Enabled && (c.Profiling.Port < 1 || c.Profiling.Port > 65535) {
		errors = append(errors, fmt.Sprintf("invalid pprof port %d: must be between 1 and 65535", c.Profiling.Port))
	}

	if _, err := c.Parser.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid parser timezone '%s': %v", c.Parser.Timezone, err))
	}
	if c.Parser.BatchWorkers < 1 {
		errors = append(errors, fmt.Sprintf("invalid parser batch workers %d: must be at least 1", c.Parser.BatchWorkers))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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
