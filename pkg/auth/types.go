package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
	"github.com/dmitrymomot/authgate/pkg/session"
)

// Tier is the membership level stored on a user.
type Tier string

const (
	TierFree Tier = "FREE"
	TierPaid Tier = "PAID"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPaid
}

// State is the verification state of an account.
type State string

const (
	StatePendingVerification State = "pending_verification"
	StateVerified            State = "verified"
)

// User is an account as stored. Secrets never serialize.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	EmailVerified       bool       `json:"email_verified"`
	Tier                Tier       `json:"membership_tier"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	PasswordHash          []byte     `json:"-"`
	VerificationTokenHash string     `json:"-"`
	ResetTokenHash        string     `json:"-"`
	ResetExpiresAt        *time.Time `json:"-"`
}

// State reports the verification state.
func (u *User) State() State {
	if u.EmailVerified {
		return StateVerified
	}
	return StatePendingVerification
}

// EffectiveTier is PAID only while a PAID membership has not expired.
// A PAID membership without an expiry never lapses.
func (u *User) EffectiveTier(now time.Time) Tier {
	if u.Tier != TierPaid {
		return TierFree
	}
	if u.MembershipExpiresAt != nil && !now.Before(*u.MembershipExpiresAt) {
		return TierFree
	}
	return TierPaid
}

// IsPaid reports whether the user holds an effective paid membership at now.
func (u *User) IsPaid(now time.Time) bool {
	return u.EffectiveTier(now) == TierPaid
}

// LoginResult carries the session issued by a successful login.
type LoginResult struct {
	User         *User
	SessionToken string
	ExpiresAt    *time.Time
}

// TokenKind distinguishes the emails the service sends.
type TokenKind string

const (
	TokenVerification  TokenKind = "verification"
	TokenPasswordReset TokenKind = "password_reset"
)

// Message is a token delivery request handed to the Mailer.
type Message struct {
	Kind      TokenKind
	To        string
	Token     string
	ExpiresAt *time.Time
}

// UserStore is the durable account store.
type UserStore interface {
	// CreateUser inserts the user; ErrEmailAlreadyExists when the address is taken.
	CreateUser(ctx context.Context, user *User) error
	// GetUserByID returns ErrUserNotFound when absent.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserByEmail looks up a normalized address; ErrUserNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// SetVerificationToken replaces the token of an unverified user. Verified users are left untouched.
	SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error
	// ConsumeVerificationToken marks the owner verified and clears the token in one step;
	// ErrTokenNotFound when no user holds it.
	ConsumeVerificationToken(ctx context.Context, tokenHash string) (*User, error)
	// SetPasswordResetToken replaces any pending reset token of the user.
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	// ConsumePasswordResetToken sets the new hash and clears the token and expiry in one step,
	// only when the token matches and now is before its expiry; ErrTokenNotFound otherwise.
	ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash []byte, now time.Time) (*User, error)
	// UpdateMembership writes the tier fields; ErrUserNotFound when absent.
	UpdateMembership(ctx context.Context, userID uuid.UUID, tier Tier, expiresAt *time.Time) error
}

// Sessions issues and revokes login sessions. *session.Manager implements it.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID) (string, *session.Session, error)
	Resolve(ctx context.Context, token string) (*session.Session, error)
	Destroy(ctx context.Context, token string) error
	DestroyAll(ctx context.Context, userID uuid.UUID) error
}

// Mailer delivers tokens to users.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Limiter checks a token bucket. *ratelimiter.Limiter implements it.
type Limiter interface {
	CheckAndConsume(ctx context.Context, key string, config ratelimiter.Config) (*ratelimiter.Result, error)
}
