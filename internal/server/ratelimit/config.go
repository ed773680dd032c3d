package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is one route's rate budget. Requests on routes without an
// entry fall back to the limiter's default budget.
type EndpointConfig struct {
	Path   string // route pattern; {name} segments match one path segment
	Method string
	Limit  int // requests per Window; 0 exempts the route
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

// LoadConfig builds rate limiting configuration from RATE_LIMIT_* environment
// variables. A bad value falls back to its default rather than failing the
// server start; disabling entirely requires an explicit RATE_LIMIT_ENABLED=false.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs carries the per-route budgets the server ships with.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Campaign starts fan out into web research and LLM calls, so
		// they get the strictest limit.
		{Path: "/campaigns", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		// Credential endpoints are brute-force targets.
		{Path: "/auth/login", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/auth/register", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/auth/password", Method: "PUT", Limit: 30, Window: time.Minute, Burst: 10},

		// Reads fall through to the default limit; the health check is
		// exempted in the matcher.
	}
}

// envOr reads the named environment variable through parse, returning
// fallback when the variable is unset, empty, or unparseable.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

// parseIPList splits a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
