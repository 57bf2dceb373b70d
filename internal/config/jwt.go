package config

import (
	"fmt"
	"time"
)

// JWTConfig holds configuration for API token signing and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// JWT returns the token configuration of the server section. A secret is required.
func (s ServerConfig) JWT() (*JWTConfig, error) {
	cfg := &JWTConfig{Secret: s.JWTSecret, ExpirationHours: s.JWTExpirationHours}
	if cfg.ExpirationHours == 0 {
		cfg.ExpirationHours = 24
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24)
// from the environment.
func NewJWTConfig() (*JWTConfig, error) {
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg.Server.JWT()
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
