package account

import (
	"time"

	"github.com/dmitrymomot/authgate/pkg/auth"
)

// sessionCookieTTL matches the cookie lifetime to the session. Sessions without
// expiry get a browser-session cookie.
func sessionCookieTTL(res *auth.LoginResult, now time.Time) time.Duration {
	if res.ExpiresAt == nil {
		return 0
	}
	return max(res.ExpiresAt.Sub(now), time.Second)
}
