package ratelimit

import (
	"net/http"
	"strings"
)

// MatchEndpoint resolves the rate limit rule for a request. Rules are
// checked in order and the first match wins, so more specific rules go
// first in the config. The health check is always unlimited; liveness
// probes must never be throttled.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && path == "/health" {
		return &EndpointConfig{}
	}

	for i := range configs {
		rule := &configs[i]
		if rule.Method == method && patternMatches(rule.Path, path) {
			return rule
		}
	}
	return nil
}

// patternMatches compares a request path against a rule pattern, segment
// by segment. Patterns use the same language as the ServeMux routes: a
// literal segment matches itself and a {name} segment matches exactly one
// non-empty path segment. There is no multi-segment wildcard.
func patternMatches(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternSegs) != len(pathSegs) {
		return false
	}

	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if pathSegs[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}
