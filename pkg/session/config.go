package session

import "time"

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// TTL is the absolute session lifetime, 0 for sessions that never expire
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// CleanupInterval for expired sessions (0 to disable)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SecureCookies enables the Secure flag on session cookies (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// Backend selects where sessions live: "store" keeps them next to users, "redis" in Redis
	Backend string `env:"SESSION_BACKEND" envDefault:"store"`

	// RedisPrefix namespaces session keys when Backend is "redis"
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"sess"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		TTL:             30 * 24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		Backend:         "store",
		RedisPrefix:     "sess",
	}
}

// NewFromConfig creates a Manager over store using the configured lifetime.
func NewFromConfig(cfg Config, store Store, opts ...Option) *Manager {
	return New(store, append([]Option{WithTTL(cfg.TTL)}, opts...)...)
}
