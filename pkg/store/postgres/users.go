package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/pg"
)

const userColumns = `id, email, password_hash, email_verified, verification_token_hash,
	reset_token_hash, reset_expires_at, membership_tier, membership_expires_at, created_at, updated_at`

// UserStore persists accounts in the users table.
type UserStore struct {
	db DB
}

var _ auth.UserStore = (*UserStore)(nil)

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		nullString(user.VerificationTokenHash),
		nullString(user.ResetTokenHash),
		user.ResetExpiresAt,
		string(user.Tier),
		user.MembershipExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, auth.ErrUserNotFound)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row, auth.ErrUserNotFound)
}

func (s *UserStore) SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET verification_token_hash = CASE WHEN email_verified THEN verification_token_hash ELSE $2 END,
		    updated_at = now()
		WHERE id = $1`,
		userID, nullString(tokenHash),
	)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) ConsumeVerificationToken(ctx context.Context, tokenHash string) (*auth.User, error) {
	if tokenHash == "" {
		return nil, auth.ErrTokenNotFound
	}
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET email_verified = TRUE, verification_token_hash = NULL, updated_at = now()
		WHERE verification_token_hash = $1
		RETURNING `+userColumns,
		tokenHash,
	)
	return scanUser(row, auth.ErrTokenNotFound)
}

func (s *UserStore) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $2, reset_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		userID, nullString(tokenHash), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash []byte, now time.Time) (*auth.User, error) {
	if tokenHash == "" {
		return nil, auth.ErrTokenNotFound
	}
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = $3
		WHERE reset_token_hash = $1 AND reset_expires_at >= $3
		RETURNING `+userColumns,
		tokenHash, passwordHash, now,
	)
	return scanUser(row, auth.ErrTokenNotFound)
}

func (s *UserStore) UpdateMembership(ctx context.Context, userID uuid.UUID, tier auth.Tier, expiresAt *time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET membership_tier = $2, membership_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		userID, string(tier), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row, notFound error) (*auth.User, error) {
	var (
		u            auth.User
		verification *string
		reset        *string
		tier         string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.EmailVerified,
		&verification,
		&reset,
		&u.ResetExpiresAt,
		&tier,
		&u.MembershipExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Tier = auth.Tier(tier)
	if verification != nil {
		u.VerificationTokenHash = *verification
	}
	if reset != nil {
		u.ResetTokenHash = *reset
	}
	return &u, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
