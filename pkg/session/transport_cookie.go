package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/authgate/pkg/cookie"
)

// CookieTransport carries the session token in a signed cookie.
type CookieTransport struct {
	cookieMgr     *cookie.Manager
	cookieName    string
	secureCookies bool
}

// NewCookieTransport creates a new cookie-based transport
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, secureCookies bool) *CookieTransport {
	if cookieName == "" {
		cookieName = DefaultConfig().CookieName
	}
	return &CookieTransport{
		cookieMgr:     cookieMgr,
		cookieName:    cookieName,
		secureCookies: secureCookies,
	}
}

// Name returns the cookie name.
func (t *CookieTransport) Name() string {
	return t.cookieName
}

// GetToken extracts the session token from the cookie.
// Missing, malformed and forged cookies all yield ErrSessionNotFound.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	tok, err := t.cookieMgr.GetSigned(r, t.cookieName)
	if err != nil || tok == "" {
		return "", ErrSessionNotFound
	}
	return tok, nil
}

// HasToken reports whether the session cookie is present. No signature or storage check.
func (t *CookieTransport) HasToken(r *http.Request) bool {
	return t.cookieMgr.Has(r, t.cookieName)
}

// SetToken stores the session token in a cookie. A zero ttl writes a browser-session cookie.
func (t *CookieTransport) SetToken(w http.ResponseWriter, tok string, ttl time.Duration) {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}

	t.cookieMgr.SetSigned(w, t.cookieName, tok, opts...)
}

// ClearToken removes the session cookie
func (t *CookieTransport) ClearToken(w http.ResponseWriter) {
	t.cookieMgr.Delete(w, t.cookieName)
}
