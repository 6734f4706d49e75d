package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/binder"
	"github.com/dmitrymomot/authgate/pkg/gate"
	"github.com/dmitrymomot/authgate/pkg/logger"
)

// Service is the account lifecycle. *auth.Service implements it.
type Service interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	VerifyEmail(ctx context.Context, token string) (*auth.User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*auth.User, error)
	Now() time.Time
}

// TokenTransport carries the session token between server and browser.
// *session.CookieTransport implements it.
type TokenTransport interface {
	gate.TokenReader
	SetToken(w http.ResponseWriter, token string, ttl time.Duration)
	ClearToken(w http.ResponseWriter)
}

// Option configures the router.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	maxBody int64
}

// WithLogger sets the logger for request errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxBodySize caps JSON request bodies.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

type routes struct {
	svc          Service
	transport    TokenTransport
	errorHandler handler.ErrorHandler[handler.Context]
	bind         handler.Bind
}

// NewRouter builds the /auth routes. g guards /logout-all and /me.
func NewRouter(svc Service, transport TokenTransport, g *gate.Gate, opts ...Option) chi.Router {
	o := options{logger: logger.Noop(), maxBody: binder.DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &routes{
		svc:          svc,
		transport:    transport,
		errorHandler: handler.NewErrorHandler(o.logger, handler.WithErrorMapper(MapError)),
		bind:         binder.JSON(binder.WithMaxSize(o.maxBody)),
	}

	r := chi.NewRouter()

	r.Post("/register", wrapJSON(rt, rt.register))
	r.Post("/verify-email", wrapJSON(rt, rt.verifyEmail))
	r.Post("/resend-verification", wrapJSON(rt, rt.resendVerification))
	r.Post("/login", wrapJSON(rt, rt.login))
	r.Post("/logout", wrapEmpty(rt, rt.logout))
	r.Post("/forgot-password", wrapJSON(rt, rt.forgotPassword))
	r.Post("/reset-password", wrapJSON(rt, rt.resetPassword))

	r.Group(func(r chi.Router) {
		r.Use(g.RequireUser)
		r.Post("/logout-all", wrapEmpty(rt, rt.logoutAll))
		r.Get("/me", wrapEmpty(rt, rt.me))
	})

	return r
}

func wrapJSON[R any](rt *routes, h func(handler.Context, R) handler.Response) http.HandlerFunc {
	return handler.Wrap(handler.HandlerFunc[handler.Context, R](h),
		handler.WithBinder[handler.Context, R](rt.bind),
		handler.WithErrorHandler[handler.Context, R](rt.errorHandler),
	)
}

// wrapEmpty serves routes without a request body.
func wrapEmpty(rt *routes, h func(handler.Context, struct{}) handler.Response) http.HandlerFunc {
	return handler.Wrap(handler.HandlerFunc[handler.Context, struct{}](h),
		handler.WithErrorHandler[handler.Context, struct{}](rt.errorHandler),
	)
}
