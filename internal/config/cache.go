package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache in front of the seat map
// read endpoints.  Only GET responses are cached.  Entries are keyed by the
// request path (which carries the session id) and, for the "path_query"
// strategy, the sorted query string.  Applying an edit drops every entry
// under the session's key space.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	KeyStrategy  string // "path" or "path_query"
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          parseDur(getenv("CACHE_TTL", "30s")),
		KeyStrategy:  strings.ToLower(getenv("CACHE_KEY_STRATEGY", "path_query")),
		Prefix:       getenv("CACHE_PREFIX", "seatmap:cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "4194304")),
	}
	if cfg.KeyStrategy != "path" {
		cfg.KeyStrategy = "path_query"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
