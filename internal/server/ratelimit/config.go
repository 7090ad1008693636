package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one method and path.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends with "/"
	Method string
	Limit  int           // requests per window
	Window time.Duration
	Burst  int // bucket capacity; Limit when zero
}

// LoadConfig reads RATE_LIMIT_* environment variables over the defaults.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	env := envReader(getenv)

	if !env.bool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	analyze := EndpointConfig{
		Limit:  env.int("RATE_LIMIT_ANALYZE_LIMIT", defaultAnalyzeLimit.Limit),
		Window: env.duration("RATE_LIMIT_ANALYZE_WINDOW", defaultAnalyzeLimit.Window),
		Burst:  env.int("RATE_LIMIT_ANALYZE_BURST", defaultAnalyzeLimit.Burst),
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.int("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     env.duration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       parseIPList(env.string("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(env.string("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: EndpointConfigs(analyze),
	}
}

// defaultAnalyzeLimit allows 20 model calls per hour with bursts of 3.
var defaultAnalyzeLimit = EndpointConfig{Limit: 20, Window: time.Hour, Burst: 3}

// EndpointConfigs applies the analyze limit to every route that calls the model.
func EndpointConfigs(analyze EndpointConfig) []EndpointConfig {
	configs := make([]EndpointConfig, 0, 5)
	for _, path := range []string{"/analyze", "/api/analyze", "/api/analyze/stream"} {
		c := analyze
		c.Path = path
		c.Method = "POST"
		configs = append(configs, c)
	}
	// Setting the key is cheap but should not be brute-forced
	for _, path := range []string{"/key", "/api/key"} {
		configs = append(configs, EndpointConfig{Path: path, Method: "POST", Limit: 30, Window: time.Minute, Burst: 5})
	}
	return configs
}

type envReader func(string) string

func (e envReader) string(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e envReader) int(key string, def int) int {
	if v, err := strconv.Atoi(e(key)); err == nil {
		return v
	}
	return def
}

func (e envReader) bool(key string, def bool) bool {
	if v, err := strconv.ParseBool(e(key)); err == nil {
		return v
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(e(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
