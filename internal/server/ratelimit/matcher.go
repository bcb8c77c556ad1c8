package ratelimit

import (
	"strings"
)

// unlimitedPaths are GET routes that are never limited: health checks,
// metrics scrapes and static assets.
var unlimitedPaths = []string{"/health", "/metrics", "/static/"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/static/" matches "/static/app.js").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && isUnlimited(path) {
		return &EndpointConfig{Path: path, Method: method}
	}

	// Try exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Try prefix match (for paths ending with "/")
	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") {
			if strings.HasPrefix(path, config.Path) {
				return config
			}
		}
	}

	return nil
}

func isUnlimited(path string) bool {
	for _, p := range unlimitedPaths {
		if path == p {
			return true
		}
		if strings.HasSuffix(p, "/") && strings.HasPrefix(path, p) {
			return true
		}
		// /health/backend and similar sub-checks
		if !strings.HasSuffix(p, "/") && strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
