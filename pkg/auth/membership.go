package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpdateMembership records a tier change from billing.
// A nil expiresAt means the tier does not lapse.
func (s *Service) UpdateMembership(ctx context.Context, userID uuid.UUID, tier Tier, expiresAt *time.Time) error {
	if !tier.Valid() {
		return ErrInvalidTier
	}

	if err := s.users.UpdateMembership(ctx, userID, tier, expiresAt); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

// Now returns the service clock reading; gates use it to judge membership expiry.
func (s *Service) Now() time.Time {
	return s.now()
}
