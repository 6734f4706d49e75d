package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/sanitizer"
	"github.com/dmitrymomot/authgate/pkg/token"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// RequestPasswordReset mails a reset token when the address belongs to an account.
// Unknown addresses succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.allow(ctx, OpForgotPassword); err != nil {
		return err
	}

	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	tok, err := token.Generate()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.resetTokenTTL)
	if err := s.users.SetPasswordResetToken(ctx, user.ID, token.Hash(tok), expiresAt); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.deliver(ctx, Message{Kind: TokenPasswordReset, To: user.Email, Token: tok, ExpiresAt: &expiresAt})

	return nil
}

// ResetPassword sets a new password using a reset token and ends every session of the user.
// The token is single use: of concurrent calls with the same token exactly one succeeds.
func (s *Service) ResetPassword(ctx context.Context, tok, newPassword string) (*User, error) {
	if err := s.allow(ctx, OpResetPassword); err != nil {
		return nil, err
	}

	if err := validator.Apply(validator.Password("password", newPassword, s.passwordPolicy)...); err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.ConsumePasswordResetToken(ctx, token.Hash(tok), passwordHash, s.now())
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	// The password already changed; a failed revoke must not undo that.
	if err := s.sessions.DestroyAll(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions after password reset",
			logger.Component("auth"),
			logger.UserID(user.ID),
			logger.Error(err),
		)
	}

	return user, nil
}
