package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/requestid"
)

var (
	ErrEmailNotVerified   = handler.NewHTTPError(http.StatusForbidden, "email_not_verified")
	ErrMembershipRequired = handler.NewHTTPError(http.StatusForbidden, "membership_required")
)

// TokenReader reads the session token from a request. *session.CookieTransport implements it.
type TokenReader interface {
	HasToken(r *http.Request) bool
	GetToken(r *http.Request) (string, error)
}

// UserResolver resolves a session token to its user. *auth.Service implements it.
type UserResolver interface {
	GetUserForSession(ctx context.Context, token string) (*auth.User, error)
}

// RequireSessionCookie rejects requests without a session cookie with 401.
func RequireSessionCookie(tokens TokenReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.HasToken(r) {
				writeError(w, r, handler.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Edge applies RequireSessionCookie to requests whose path starts with one of prefixes.
// Other requests pass through untouched.
func Edge(tokens TokenReader, prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := RequireSessionCookie(tokens)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range prefixes {
				if matchPrefix(r.URL.Path, p) {
					guarded.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matchPrefix matches whole path segments: "/app" covers "/app" and "/app/x", not "/apples".
func matchPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Gate is the authoritative tier.
type Gate struct {
	users  UserResolver
	tokens TokenReader
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger for resolution failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock sets the time source used for membership expiry.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

func New(users UserResolver, tokens TokenReader, opts ...Option) *Gate {
	g := &Gate{
		users:  users,
		tokens: tokens,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// resolve returns the user for the request, or nil with no error when there is no valid session.
func (g *Gate) resolve(r *http.Request) (*auth.User, string, error) {
	tok, err := g.tokens.GetToken(r)
	if err != nil || tok == "" {
		return nil, "", nil
	}

	user, err := g.users.GetUserForSession(r.Context(), tok)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return user, tok, nil
}

// RequireUser rejects requests without a valid session (401) and stores the user in the context.
// Store failures answer 500.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, tok, err := g.resolve(r)
		if err != nil {
			g.fail(w, r, err)
			return
		}
		if user == nil {
			writeError(w, r, handler.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user, tok)))
	})
}

// LoadUser stores the user in the context when the request has a valid session and
// lets anonymous requests through.
func (g *Gate) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, tok, err := g.resolve(r)
		if err != nil {
			g.fail(w, r, err)
			return
		}
		if user != nil {
			r = r.WithContext(ContextWithUser(r.Context(), user, tok))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.ErrorContext(r.Context(), "failed to resolve session",
		logger.Component("gate"),
		logger.RequestID(requestid.FromContext(r.Context())),
		logger.Error(err),
	)
	writeError(w, r, handler.ErrInternalServerError)
}

// RequireVerified answers 403 email_not_verified for unverified users.
// It must run after RequireUser; without a user it answers 401.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		switch {
		case user == nil:
			writeError(w, r, handler.ErrUnauthorized)
		case !user.EmailVerified:
			writeError(w, r, ErrEmailNotVerified)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RequirePaid answers 403 membership_required unless the user's effective tier is PAID.
func (g *Gate) RequirePaid(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		switch {
		case user == nil:
			writeError(w, r, handler.ErrUnauthorized)
		case !user.IsPaid(g.now()):
			writeError(w, r, ErrMembershipRequired)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeError(w http.ResponseWriter, r *http.Request, e handler.HTTPError) {
	_ = handler.JSONError(e.Code, &handler.ErrorDetail{
		Code:    e.Key,
		Message: http.StatusText(e.Code),
	}).Render(w, r)
}
