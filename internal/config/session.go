package config

import "time"

// SessionConfig bounds how long an uploaded seat map is kept and how long an
// apply may hold a session's edit lock.
type SessionConfig struct {
	TTL     time.Duration
	LockTTL time.Duration
	Prefix  string
}

func LoadSessionConfig() SessionConfig {
	cfg := SessionConfig{
		TTL:     envDur("SESSION_TTL", 2*time.Hour),
		LockTTL: envDur("SESSION_LOCK_TTL", 30*time.Second),
		Prefix:  envStr("SESSION_PREFIX", "seatmap:session"),
	}
	if cfg.TTL < time.Minute {
		cfg.TTL = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return cfg
}
