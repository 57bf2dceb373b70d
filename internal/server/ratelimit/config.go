package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/ats-optimizer/internal/config"
)

// Request costs. Routes that call the content service draw more tokens.
const (
	CostFree     = 0
	CostDefault  = 1
	CostAnalysis = 3
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	IdleTimeout       time.Duration
	Whitelist         map[string]bool
}

// DefaultConfig returns an enabled limiter configuration with the server defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		RequestsPerSecond: 2,
		Burst:             10,
		CleanupInterval:   5 * time.Minute,
		IdleTimeout:       time.Hour,
		Whitelist:         make(map[string]bool),
	}
}

// LoadConfig builds the limiter configuration from the server settings.
// RATE_LIMIT_ENABLED and RATE_LIMIT_WHITELIST are read from the environment.
func LoadConfig(settings config.RateLimit) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", true)
	if settings.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = settings.RequestsPerSecond
	}
	if settings.Burst > 0 {
		cfg.Burst = settings.Burst
	}
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	return cfg
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
