package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// Config holds the identity service settings loaded from the environment.
type Config struct {
	BcryptCost           int                      `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	ResetTokenTTL        time.Duration            `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	DeliveryTimeout      time.Duration            `env:"AUTH_DELIVERY_TIMEOUT" envDefault:"10s"`
	HideExistingAccounts bool                     `env:"AUTH_HIDE_EXISTING_ACCOUNTS" envDefault:"false"`
	PasswordPolicy       validator.PasswordPolicy `envPrefix:"AUTH_"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BcryptCost:      bcrypt.DefaultCost,
		ResetTokenTTL:   time.Hour,
		DeliveryTimeout: 10 * time.Second,
		PasswordPolicy:  validator.DefaultPasswordPolicy(),
	}
}

// Operation names. They prefix rate limit keys.
const (
	OpRegister           = "register"
	OpLogin              = "login"
	OpForgotPassword     = "forgot_password"
	OpResetPassword      = "reset_password"
	OpResendVerification = "resend_verification"
)

// RateLimits holds one bucket configuration per guarded operation.
// A zero Config disables limiting for that operation.
type RateLimits struct {
	Register           ratelimiter.Config
	Login              ratelimiter.Config
	ForgotPassword     ratelimiter.Config
	ResetPassword      ratelimiter.Config
	ResendVerification ratelimiter.Config
}

// DefaultRateLimits returns the production bucket sizes.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Register:           ratelimiter.Config{Capacity: 5, RefillPerSecond: 0.1},
		Login:              ratelimiter.Config{Capacity: 10, RefillPerSecond: 0.5},
		ForgotPassword:     ratelimiter.Config{Capacity: 5, RefillPerSecond: 0.2},
		ResetPassword:      ratelimiter.Config{Capacity: 10, RefillPerSecond: 0.5},
		ResendVerification: ratelimiter.Config{Capacity: 5, RefillPerSecond: 0.2},
	}
}

func (r RateLimits) forOperation(op string) ratelimiter.Config {
	switch op {
	case OpRegister:
		return r.Register
	case OpLogin:
		return r.Login
	case OpForgotPassword:
		return r.ForgotPassword
	case OpResetPassword:
		return r.ResetPassword
	case OpResendVerification:
		return r.ResendVerification
	}
	return ratelimiter.Config{}
}
