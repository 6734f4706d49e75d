package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authgate/pkg/auth"
)

type userView struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	EmailVerified       bool       `json:"email_verified"`
	State               auth.State `json:"state"`
	MembershipTier      auth.Tier  `json:"membership_tier"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// newUserView reports the effective tier at now, not the stored one.
func newUserView(u *auth.User, now time.Time) userView {
	return userView{
		ID:                  u.ID,
		Email:               u.Email,
		EmailVerified:       u.EmailVerified,
		State:               u.State(),
		MembershipTier:      u.EffectiveTier(now),
		MembershipExpiresAt: u.MembershipExpiresAt,
		CreatedAt:           u.CreatedAt,
	}
}

type loginView struct {
	User      userView   `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type messageView struct {
	Message string `json:"message"`
}

const (
	msgRegistered    = "Check your inbox to verify your email address."
	msgVerifySent    = "If the address belongs to an unverified account, a new verification email is on its way."
	msgResetSent     = "If an account exists for that address, a password reset email is on its way."
	msgPasswordReset = "Your password has been changed. Sign in with the new password."
)
