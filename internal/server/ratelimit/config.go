package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the operator-facing knobs of the limiter.
type Settings struct {
	RequestsPerMinute float64
	Burst             int
	Whitelist         string // comma-separated client IPs that are never limited
	Blacklist         string // comma-separated client IPs that are always refused
}

// NewConfig builds the limiter configuration for the analysis endpoints.
// Analyses are limited to the configured rate; the cheaper single-stage
// endpoints get twice that.
func NewConfig(s Settings) *Config {
	perMinute := int(s.RequestsPerMinute)
	if perMinute < 1 {
		perMinute = 1
	}
	burst := max(s.Burst, 1)
	return &Config{
		Enabled:         true,
		DefaultLimit:    10 * perMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       parseIPList(s.Whitelist),
		Blacklist:       parseIPList(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(perMinute, burst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(perMinute, burst int) []EndpointConfig {
	return []EndpointConfig{
		// Full analyses run every oracle stage.
		{Path: "/analyze", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},
		{Path: "/analyze/stream", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},

		// Single-stage operations.
		{Path: "/requirements", Method: "POST", Limit: 2 * perMinute, Window: time.Minute, Burst: 2 * burst},
		{Path: "/resume/", Method: "POST", Limit: 2 * perMinute, Window: time.Minute, Burst: 2 * burst},

		// GET /health is never limited; see unlimitedRoutes.
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
