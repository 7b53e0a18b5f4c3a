package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/wakti/wakti-nlp/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromConfig converts the application rate limit settings.
func FromConfig(c config.RateLimitConfig) *Config {
	if !c.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		CleanupInterval: c.CleanupInterval,
		Whitelist:       ipSet(c.Whitelist),
		Blacklist:       ipSet(c.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Batch classification and URL ingestion fan out work
		{Path: "/v1/results/classify/batch", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/v1/results/classify-url", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},

		// Wizard writes hit the database
		{Path: "/v1/wizard/sessions", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/v1/wizard/sessions/", Method: http.MethodPost, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/v1/wizard/sessions/", Method: http.MethodDelete, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// ipSet parses a list of IP addresses into a set, skipping blanks.
func ipSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
