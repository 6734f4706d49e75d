package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authgate/pkg/sanitizer"
	"github.com/dmitrymomot/authgate/pkg/session"
)

// Login checks the credentials and opens a session.
// Unknown addresses and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := s.allow(ctx, OpLogin); err != nil {
		return nil, err
	}

	email = sanitizer.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.dummyCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tok, sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginResult{
		User:         user,
		SessionToken: tok,
		ExpiresAt:    sess.ExpiresAt,
	}, nil
}

// Logout ends the session identified by tok. Ending an unknown session is not an error.
func (s *Service) Logout(ctx context.Context, tok string) error {
	if err := s.sessions.Destroy(ctx, tok); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// LogoutAll ends every session of the user.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.DestroyAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to logout everywhere: %w", err)
	}
	return nil
}

// GetUserForSession resolves a session token to its user.
// Missing, expired and orphaned sessions yield ErrUnauthorized.
func (s *Service) GetUserForSession(ctx context.Context, tok string) (*User, error) {
	sess, err := s.sessions.Resolve(ctx, tok)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
