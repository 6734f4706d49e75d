package main

import (
	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/cookie"
	"github.com/dmitrymomot/authgate/pkg/email"
	"github.com/dmitrymomot/authgate/pkg/httpserver"
	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/pg"
	"github.com/dmitrymomot/authgate/pkg/redis"
	"github.com/dmitrymomot/authgate/pkg/session"
)

const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendRedis    = "redis"
	backendOff      = "off"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_SERVICE_NAME" envDefault:"authgate"`

	// StoreBackend holds users (and sessions unless SESSION_BACKEND=redis): memory or postgres.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	// RateLimitBackend is memory, redis or off.
	RateLimitBackend     string `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RateLimitRedisPrefix string `env:"RATE_LIMIT_REDIS_PREFIX" envDefault:"rl"`
	// Coarse per-client budget for the whole /auth API, on top of the per-operation buckets.
	// Zero capacity disables it.
	APIRateCapacity int     `env:"AUTH_API_RATE_CAPACITY" envDefault:"60"`
	APIRateRefill   float64 `env:"AUTH_API_RATE_REFILL" envDefault:"1"`

	// GuardedPrefixes get the edge cookie check before any handler runs.
	GuardedPrefixes []string `env:"GATE_PREFIXES" envDefault:"/app" envSeparator:","`
	MigrateOnStart  bool     `env:"PG_MIGRATE_ON_START" envDefault:"true"`

	Log     logger.Config
	HTTP    httpserver.Config
	Auth    auth.Config
	Session session.Config
	Cookie  cookie.Config
	Email   email.Config
	PG      pg.Config
	Redis   redis.Config
}

func (c appConfig) usesRedis() bool {
	return c.Session.Backend == backendRedis || c.RateLimitBackend == backendRedis
}
