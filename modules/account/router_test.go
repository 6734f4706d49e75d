package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/modules/account"
	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/clientip"
	"github.com/dmitrymomot/authgate/pkg/cookie"
	"github.com/dmitrymomot/authgate/pkg/gate"
	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
	"github.com/dmitrymomot/authgate/pkg/session"
)

const (
	testPassword = "correct-horse-battery"
	cookieName   = "sid"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []auth.Message
}

func (m *recordingMailer) Send(_ context.Context, msg auth.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(kind auth.TokenKind, to string) (auth.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind && m.sent[i].To == to {
			return m.sent[i], true
		}
	}
	return auth.Message{}, false
}

type testServer struct {
	h      http.Handler
	svc    *auth.Service
	mailer *recordingMailer
}

func newTestServer(t *testing.T, limits auth.RateLimits) *testServer {
	t.Helper()

	sessDB := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = sessDB.Close() })

	frozen := time.Now()
	rlStore := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(func() time.Time { return frozen }))
	t.Cleanup(rlStore.Close)

	mailer := &recordingMailer{}
	svc := auth.NewService(auth.NewMemoryStore(), session.New(sessDB, session.WithTTL(time.Hour)), mailer,
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithRateLimiter(ratelimiter.NewLimiter(rlStore)),
		auth.WithRateLimits(limits),
	)

	mgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	transport := session.NewCookieTransport(mgr, cookieName, false)

	router := account.NewRouter(svc, transport, gate.New(svc, transport))
	return &testServer{h: clientip.Middleware(router), svc: svc, mailer: mailer}
}

func (s *testServer) token(t *testing.T, kind auth.TokenKind, to string) string {
	t.Helper()
	require.NoError(t, s.svc.Drain(context.Background()))
	msg, ok := s.mailer.last(kind, to)
	require.True(t, ok, "no %s message for %s", kind, to)
	return msg.Token
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

// signup registers and verifies address, then logs in and returns the session cookie.
func (s *testServer) signup(t *testing.T, address string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/register", `{"email":"`+address+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/verify-email", `{"token":"`+s.token(t, auth.TokenVerification, address)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return s.login(t, address, testPassword)
}

func (s *testServer) login(t *testing.T, address, password string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", `{"email":"`+address+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	return c
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	require.NotNil(t, body.Error, rec.Body.String())
	return body.Error.Code
}

func TestRegister(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})

	rec := s.do(t, http.MethodPost, "/register", `{"email":"New@Example.com","password":"`+testPassword+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, s.token(t, auth.TokenVerification, "new@example.com"))

	t.Run("duplicate", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/register", `{"email":"new@example.com","password":"`+testPassword+`"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode(t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "validation_error", body.Error.Code)
		assert.Contains(t, body.Error.Details, "email")
	})

	t.Run("short password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/register", `{"email":"other@example.com","password":"short"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode(t, rec)
		require.NotNil(t, body.Error)
		assert.Contains(t, body.Error.Details, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		for _, payload := range []string{`{"email":`, `{"email":"a@b.co","password":"x","admin":true}`} {
			rec := s.do(t, http.MethodPost, "/register", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
			assert.Equal(t, "bad_request", errorCode(t, rec))
		}
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	s.do(t, http.MethodPost, "/register", `{"email":"v@example.com","password":"`+testPassword+`"}`)
	tok := s.token(t, auth.TokenVerification, "v@example.com")

	rec := s.do(t, http.MethodPost, "/verify-email", `{"token":"`+tok+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, true, data["email_verified"])
	assert.Equal(t, "verified", data["state"])
	assert.Equal(t, "FREE", data["membership_tier"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/verify-email", `{"token":"`+tok+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/verify-email", `{"token":""}`)
	assert.Equal(t, "invalid_token", errorCode(t, rec))
}

func TestLoginAndMe(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	s.do(t, http.MethodPost, "/register", `{"email":"me@example.com","password":"`+testPassword+`"}`)

	t.Run("wrong password and unknown address look the same", func(t *testing.T) {
		a := s.do(t, http.MethodPost, "/login", `{"email":"me@example.com","password":"wrong-password"}`)
		b := s.do(t, http.MethodPost, "/login", `{"email":"ghost@example.com","password":"wrong-password"}`)
		assert.Equal(t, http.StatusBadRequest, a.Code)
		assert.Equal(t, a.Body.String(), b.Body.String())
		assert.Equal(t, "invalid_credentials", errorCode(t, a))
		assert.Nil(t, sessionCookie(a))
	})

	rec := s.do(t, http.MethodPost, "/login", `{"email":"ME@example.com","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Greater(t, c.MaxAge, 0)

	data := decode(t, rec).Data.(map[string]any)
	assert.NotEmpty(t, data["expires_at"])
	assert.Equal(t, "pending_verification", data["user"].(map[string]any)["state"])

	rec = s.do(t, http.MethodGet, "/me", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "me@example.com", decode(t, rec).Data.(map[string]any)["email"])

	rec = s.do(t, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	c := s.signup(t, "out@example.com")

	rec := s.do(t, http.MethodPost, "/logout", "", c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", "", c).Code)

	// Idempotent, with or without the stale cookie.
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/logout", "", c).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/logout", "").Code)
}

func TestLogoutAll(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	laptop := s.signup(t, "all@example.com")
	phone := s.login(t, "all@example.com", testPassword)
	tablet := s.login(t, "all@example.com", testPassword)
	other := s.signup(t, "bystander@example.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/logout-all", "").Code)

	rec := s.do(t, http.MethodPost, "/logout-all", "", phone)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, sessionCookie(rec))

	for _, c := range []*http.Cookie{laptop, phone, tablet} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", "", c).Code)
	}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/me", "", other).Code)
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	old := s.signup(t, "reset@example.com")

	known := s.do(t, http.MethodPost, "/forgot-password", `{"email":"reset@example.com"}`)
	unknown := s.do(t, http.MethodPost, "/forgot-password", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusAccepted, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	tok := s.token(t, auth.TokenPasswordReset, "reset@example.com")

	rec := s.do(t, http.MethodPost, "/reset-password", `{"token":"`+tok+`","password":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/reset-password", `{"token":"`+tok+`","password":"brand-new-password"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/reset-password", `{"token":"`+tok+`","password":"another-password"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_or_expired_token", errorCode(t, rec))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", "", old).Code)

	rec = s.do(t, http.MethodPost, "/login", `{"email":"reset@example.com","password":"`+testPassword+`"}`)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	s.login(t, "reset@example.com", "brand-new-password")
}

func TestResendVerification(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{})
	s.do(t, http.MethodPost, "/register", `{"email":"again@example.com","password":"`+testPassword+`"}`)
	first := s.token(t, auth.TokenVerification, "again@example.com")

	a := s.do(t, http.MethodPost, "/resend-verification", `{"email":"again@example.com"}`)
	b := s.do(t, http.MethodPost, "/resend-verification", `{"email":"missing@example.com"}`)
	assert.Equal(t, http.StatusAccepted, a.Code)
	assert.Equal(t, a.Body.String(), b.Body.String())

	second := s.token(t, auth.TokenVerification, "again@example.com")
	assert.NotEqual(t, first, second)

	assert.Equal(t, "invalid_token", errorCode(t, s.do(t, http.MethodPost, "/verify-email", `{"token":"`+first+`"}`)))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/verify-email", `{"token":"`+second+`"}`).Code)
}

func TestRateLimited(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, auth.RateLimits{Login: ratelimiter.Config{Capacity: 2, RefillPerSecond: 0.5}})

	for range 2 {
		rec := s.do(t, http.MethodPost, "/login", `{"email":"x@example.com","password":"whatever-pass"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/login", `{"email":"x@example.com","password":"whatever-pass"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "rate_limited", body.Error.Code)
	assert.Equal(t, int64(2000), body.Error.RetryAfterMs)

	// Other operations keep their own buckets.
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/register", `{"email":"x@example.com","password":"`+testPassword+`"}`).Code)
}
