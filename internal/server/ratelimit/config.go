package ratelimit

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig overrides the default limit for one route.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends in "/"
	Method string
	Limit  int // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Tier is a limit shared by a group of routes.
type Tier struct {
	Limit  int
	Window time.Duration
	Burst  int
}

// DefaultAnalyzeTier applies to every route that forwards a CV to the backend.
var DefaultAnalyzeTier = Tier{Limit: 10, Window: time.Hour, Burst: 3}

// analyzeRoutes are the POST routes that reach the backend.
var analyzeRoutes = []string{"/api/analyze", "/api/analyze/stream", "/analyze"}

// Endpoints expands the tier into one EndpointConfig per analyze route.
// Read-only routes fall through to the default limit.
func (t Tier) Endpoints() []EndpointConfig {
	out := make([]EndpointConfig, 0, len(analyzeRoutes))
	for _, path := range analyzeRoutes {
		out = append(out, EndpointConfig{
			Path:   path,
			Method: http.MethodPost,
			Limit:  t.Limit,
			Window: t.Window,
			Burst:  t.Burst,
		})
	}
	return out
}

// LoadConfig reads RATE_LIMIT_* variables. Unset or invalid values keep
// their defaults.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	tier := Tier{
		Limit:  envOr("RATE_LIMIT_ANALYZE_LIMIT", DefaultAnalyzeTier.Limit, positiveInt),
		Window: envOr("RATE_LIMIT_ANALYZE_WINDOW", DefaultAnalyzeTier.Window, positiveDuration),
		Burst:  envOr("RATE_LIMIT_ANALYZE_BURST", DefaultAnalyzeTier.Burst, positiveInt),
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, positiveInt),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, positiveDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, positiveDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: tier.Endpoints(),
	}
}

var errNotPositive = errors.New("must be positive")

// envOr parses the variable key, returning fallback when it is unset or
// does not parse.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := parse(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err == nil && n <= 0 {
		err = errNotPositive
	}
	return n, err
}

func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil && d <= 0 {
		err = errNotPositive
	}
	return d, err
}

// parseIPList turns "10.0.0.1, 10.0.0.2" into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
