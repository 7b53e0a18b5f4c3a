package config

import (
	"fmt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// JWTConfig derives the token configuration. The secret is required.
func (c *Config) JWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          c.JWT.Secret,
		ExpirationHours: c.JWT.ExpirationHours,
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("%s_JWT_SECRET cannot be empty", EnvPrefix)
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("%s_JWT_SECRET must be at least 16 characters", EnvPrefix)
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("%s_JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", EnvPrefix, c.ExpirationHours)
	}
	return nil
}
