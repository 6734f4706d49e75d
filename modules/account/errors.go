package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/authgate/handler"
	"github.com/dmitrymomot/authgate/pkg/auth"
)

var (
	ErrInvalidCredentials    = handler.NewHTTPError(http.StatusBadRequest, "invalid_credentials")
	ErrInvalidToken          = handler.NewHTTPError(http.StatusBadRequest, "invalid_token")
	ErrInvalidOrExpiredToken = handler.NewHTTPError(http.StatusBadRequest, "invalid_or_expired_token")
)

// MapError turns auth outcomes into HTTP errors. The original error stays in the
// chain so retry hints and logs keep their detail. Unknown errors pass through.
func MapError(err error) error {
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		return errors.Join(handler.ErrTooManyRequests, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errors.Join(ErrInvalidCredentials, err)
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return errors.Join(ErrInvalidOrExpiredToken, err)
	case errors.Is(err, auth.ErrInvalidToken):
		return errors.Join(ErrInvalidToken, err)
	case errors.Is(err, auth.ErrUnauthorized):
		return errors.Join(handler.ErrUnauthorized, err)
	}
	return err
}
