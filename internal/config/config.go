// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WAKTI_SERVER_PORT.
const EnvPrefix = "WAKTI"

// Config is the full runtime configuration. Values come from defaults, an
// optional YAML or JSON file, and WAKTI_* environment variables, in that order.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTSettings     `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Catalogs  CatalogConfig   `mapstructure:"catalogs"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig points at the Postgres database holding wizard sessions.
// An empty URL disables the wizard endpoints.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the response cache. An empty URL disables caching.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// JWTSettings is the raw token configuration; see Config.JWTConfig.
type JWTSettings struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig names optional YAML files replacing the built-in catalogs.
type CatalogConfig struct {
	IntentPath  string `mapstructure:"intent_path"`
	FeaturePath string `mapstructure:"feature_path"`
}

// RateLimitConfig mirrors the token bucket limiter settings.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// FetchConfig controls snippet ingestion from URLs.
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UseBrowser bool          `mapstructure:"use_browser"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", int64(1<<20))

	v.SetDefault("database.url", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("catalogs.intent_path", "")
	v.SetDefault("catalogs.feature_path", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.use_browser", false)
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return decode(v)
}

// Default returns the built-in defaults, ignoring files and the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Secrets are not required here since only the server needs them.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("config error: 'server.max_body_bytes' must be positive")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("config error: 'redis.ttl' must be non-negative")
	}
	if c.JWT.ExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt.expiration_hours' must be at least 1, got %d", c.JWT.ExpirationHours)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown 'logging.level' %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config error: 'logging.format' must be json or console, got %q", c.Logging.Format)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 1 {
			return fmt.Errorf("config error: 'rate_limit.default_limit' must be positive when rate limiting is enabled")
		}
		if c.RateLimit.DefaultWindow <= 0 {
			return fmt.Errorf("config error: 'rate_limit.default_window' must be positive when rate limiting is enabled")
		}
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config error: 'fetch.timeout' must be positive")
	}

	return nil
}

// WizardEnabled reports whether the session store and token signing are both configured.
func (c *Config) WizardEnabled() bool {
	return c.Database.URL != "" && c.JWT.Secret != ""
}
