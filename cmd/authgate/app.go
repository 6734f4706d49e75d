package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/modules/account"
	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/clientip"
	"github.com/dmitrymomot/authgate/pkg/cookie"
	"github.com/dmitrymomot/authgate/pkg/email"
	"github.com/dmitrymomot/authgate/pkg/environment"
	"github.com/dmitrymomot/authgate/pkg/gate"
	"github.com/dmitrymomot/authgate/pkg/httpserver"
	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/pg"
	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
	"github.com/dmitrymomot/authgate/pkg/redis"
	"github.com/dmitrymomot/authgate/pkg/requestid"
	"github.com/dmitrymomot/authgate/pkg/session"
	"github.com/dmitrymomot/authgate/pkg/store/postgres"
	"github.com/dmitrymomot/authgate/pkg/token"
)

var ErrMissingCookieSecret = errors.New("COOKIE_SECRETS is required outside development")

// app owns every long-lived dependency of the process.
type app struct {
	log     *slog.Logger
	handler http.Handler
	auth    *auth.Service

	checks  []httpserver.Check
	closers []func() error

	closeOnce sync.Once
	closeErr  error
}

func newApp(ctx context.Context, cfg appConfig, env environment.Environment, log *slog.Logger) (_ *app, err error) {
	a := &app{log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	var pool *pgxpool.Pool
	if cfg.StoreBackend == backendPostgres {
		if pool, err = pg.Connect(ctx, cfg.PG); err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

		if cfg.MigrateOnStart {
			if err = pg.Migrate(ctx, pool, cfg.PG, postgres.Migrations, log); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
	} else if cfg.StoreBackend != backendMemory {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	var rdb *goredis.Client
	if cfg.usesRedis() {
		if rdb, err = redis.Connect(ctx, cfg.Redis); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
	}

	users := a.userStore(pool)

	sessStore, err := a.sessionStore(cfg, pool, rdb)
	if err != nil {
		return nil, err
	}
	sessions := session.NewFromConfig(cfg.Session, sessStore, session.WithLogger(log))
	if _, ok := sessStore.(*postgres.SessionStore); ok {
		// Redis and the memory store expire sessions on their own.
		go sessions.RunCleanup(ctx, cfg.Session.CleanupInterval)
	}

	rlStore, err := a.rateLimitStore(cfg, rdb)
	if err != nil {
		return nil, err
	}

	sender, err := email.NewSender(cfg.Email, log)
	if err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	notifier, err := email.NewNotifier(sender, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("email notifier: %w", err)
	}

	opts := []auth.ServiceOption{auth.WithLogger(log)}
	if rlStore != nil {
		opts = append(opts, auth.WithRateLimiter(ratelimiter.NewLimiter(rlStore)))
	}
	a.auth = auth.NewServiceFromConfig(cfg.Auth, users, sessions, notifier, opts...)

	cookies, err := a.cookieManager(cfg, env)
	if err != nil {
		return nil, err
	}
	transport := session.NewCookieTransport(cookies, cfg.Session.CookieName, cfg.Session.SecureCookies)
	g := gate.New(a.auth, transport, gate.WithLogger(log), gate.WithClock(a.auth.Now))

	apiLimit, err := apiRateLimit(cfg, rlStore)
	if err != nil {
		return nil, err
	}

	a.handler = a.routes(cfg, transport, g, apiLimit)
	return a, nil
}

func (a *app) userStore(pool *pgxpool.Pool) auth.UserStore {
	if pool != nil {
		return postgres.NewUserStore(pool)
	}
	return auth.NewMemoryStore()
}

func (a *app) sessionStore(cfg appConfig, pool *pgxpool.Pool, rdb *goredis.Client) (session.Store, error) {
	switch {
	case cfg.Session.Backend == backendRedis:
		return session.NewRedisStore(rdb, cfg.Session.RedisPrefix), nil
	case cfg.Session.Backend != "store":
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.Session.Backend)
	case pool != nil:
		return postgres.NewSessionStore(pool), nil
	default:
		store := session.NewMemoryStore(cfg.Session.CleanupInterval)
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

// rateLimitStore returns nil when rate limiting is off.
func (a *app) rateLimitStore(cfg appConfig, rdb *goredis.Client) (ratelimiter.Store, error) {
	switch cfg.RateLimitBackend {
	case backendOff:
		a.log.Warn("rate limiting disabled", logger.Component("ratelimiter"))
		return nil, nil
	case backendRedis:
		return ratelimiter.NewRedisStore(rdb, ratelimiter.WithKeyPrefix(cfg.RateLimitRedisPrefix)), nil
	case backendMemory, "":
		store := ratelimiter.NewMemoryStore()
		a.closers = append(a.closers, func() error { store.Close(); return nil })
		return store, nil
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
	}
}

// apiRateLimit builds the per-client middleware for /auth, or a pass-through when disabled.
func apiRateLimit(cfg appConfig, store ratelimiter.Store) (func(http.Handler) http.Handler, error) {
	if store == nil || cfg.APIRateCapacity == 0 {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:        cfg.APIRateCapacity,
		RefillPerSecond: cfg.APIRateRefill,
	})
	if err != nil {
		return nil, fmt.Errorf("auth api rate limit: %w", err)
	}
	keyFunc := func(r *http.Request) string {
		return ratelimiter.Key("auth_api", clientip.GetIPFromContext(r.Context()))
	}
	return ratelimiter.Middleware(bucket, keyFunc, ratelimiter.WithErrorResponder(rateLimitResponder)), nil
}

func rateLimitResponder(w http.ResponseWriter, r *http.Request, result *ratelimiter.Result, err error) {
	if err != nil {
		_ = handler.JSONError(handler.ErrInternalServerError.Code, &handler.ErrorDetail{
			Code:    handler.ErrInternalServerError.Key,
			Message: "internal server error",
		}).Render(w, r)
		return
	}
	_ = handler.JSONError(handler.ErrTooManyRequests.Code, &handler.ErrorDetail{
		Code:         handler.ErrTooManyRequests.Key,
		Message:      "too many requests",
		RetryAfterMs: result.RetryAfterMs(),
	}).Render(w, r)
}

// cookieManager signs session cookies. Development falls back to a per-process
// secret, so sessions do not survive restarts there.
func (a *app) cookieManager(cfg appConfig, env environment.Environment) (*cookie.Manager, error) {
	if cfg.Cookie.Secrets == "" {
		if env != environment.Development {
			return nil, ErrMissingCookieSecret
		}
		a.log.Warn("COOKIE_SECRETS not set, using an ephemeral secret", logger.Component("cookie"))
		cfg.Cookie.Secrets = token.MustGenerate()
	}
	if cfg.Session.SecureCookies {
		cfg.Cookie.Secure = true
	}
	m, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return nil, fmt.Errorf("cookie manager: %w", err)
	}
	return m, nil
}

func (a *app) routes(cfg appConfig, transport *session.CookieTransport, g *gate.Gate, apiLimit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware,
		gate.Edge(transport, cfg.GuardedPrefixes...),
	)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(a.log, 2*time.Second, a.checks...))

	r.With(apiLimit).Mount("/auth", account.NewRouter(a.auth, transport, g, account.WithLogger(a.log)))

	r.Route("/app", func(r chi.Router) {
		r.Use(g.RequireUser)
		r.Get("/", a.area("member"))
		r.Route("/premium", func(r chi.Router) {
			r.Use(gate.RequireVerified, g.RequirePaid)
			r.Get("/", a.area("premium"))
		})
	})

	return r
}

// area is the placeholder content behind the gates.
func (a *app) area(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := gate.UserFromContext(r.Context())
		_ = handler.JSON(map[string]any{
			"area":            name,
			"user_id":         user.ID,
			"membership_tier": user.EffectiveTier(a.auth.Now()),
		}).Render(w, r)
	}
}

func (a *app) Handler() http.Handler {
	return a.handler
}

// Close waits for pending email deliveries, then releases stores and connections.
// Later calls return the first result.
func (a *app) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.auth != nil {
			if err := a.auth.Drain(ctx); err != nil {
				errs = append(errs, fmt.Errorf("drain deliveries: %w", err))
			}
		}
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
