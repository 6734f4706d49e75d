package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authgate/pkg/sanitizer"
	"github.com/dmitrymomot/authgate/pkg/token"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// Register creates an unverified FREE account and mails a verification token.
// It returns (nil, nil) for a taken address when WithHideExistingAccounts is set.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if err := s.allow(ctx, OpRegister); err != nil {
		return nil, err
	}

	email = sanitizer.NormalizeEmail(email)
	rules := []validator.Rule{
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	}
	rules = append(rules, validator.Password("password", password, s.passwordPolicy)...)
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tok, err := token.Generate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &User{
		ID:                    uuid.New(),
		Email:                 email,
		PasswordHash:          passwordHash,
		EmailVerified:         false,
		VerificationTokenHash: token.Hash(tok),
		Tier:                  TierFree,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			if s.hideExisting {
				return nil, nil
			}
			return nil, errors.Join(
				validator.NewError("email", "is already registered", "validation.email_taken"),
				ErrEmailAlreadyExists,
			)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.deliver(ctx, Message{Kind: TokenVerification, To: user.Email, Token: tok})

	return user, nil
}

// VerifyEmail consumes a verification token and marks its owner verified.
func (s *Service) VerifyEmail(ctx context.Context, tok string) (*User, error) {
	if tok == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.ConsumeVerificationToken(ctx, token.Hash(tok))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	return user, nil
}

// ResendVerification issues a fresh verification token to an unverified account.
// The result is the same for unknown and already verified addresses.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	if err := s.allow(ctx, OpResendVerification); err != nil {
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
	if user.EmailVerified {
		return nil
	}

	tok, err := token.Generate()
	if err != nil {
		return err
	}

	if err := s.users.SetVerificationToken(ctx, user.ID, token.Hash(tok)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	s.deliver(ctx, Message{Kind: TokenVerification, To: user.Email, Token: tok})

	return nil
}
