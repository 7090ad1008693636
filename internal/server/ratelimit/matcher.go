package ratelimit

import (
	"strings"
)

// unlimited lists requests that are never throttled.
var unlimited = map[string]bool{
	"GET /health": true,
	"GET /":       true,
}

// MatchEndpoint returns the configuration for method and path, or nil to use the default.
// Exact paths win over prefixes; a prefix is a configured path ending in "/".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}
