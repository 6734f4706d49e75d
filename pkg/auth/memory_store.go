package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process UserStore for development and tests.
// Every method runs under one lock, so token consumption is atomic.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

var _ UserStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return ErrEmailAlreadyExists
	}

	s.users[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) SetVerificationToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if u.EmailVerified {
		return nil
	}
	u.VerificationTokenHash = tokenHash
	u.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) ConsumeVerificationToken(ctx context.Context, tokenHash string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tokenHash == "" {
		return nil, ErrTokenNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.VerificationTokenHash == tokenHash {
			u.EmailVerified = true
			u.VerificationTokenHash = ""
			u.UpdatedAt = s.now()
			return cloneUser(u), nil
		}
	}
	return nil, ErrTokenNotFound
}

func (s *MemoryStore) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiresAt
	u.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash []byte, now time.Time) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tokenHash == "" {
		return nil, ErrTokenNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetExpiresAt == nil || now.After(*u.ResetExpiresAt) {
			return nil, ErrTokenNotFound
		}
		u.PasswordHash = append([]byte(nil), passwordHash...)
		u.ResetTokenHash = ""
		u.ResetExpiresAt = nil
		u.UpdatedAt = now
		return cloneUser(u), nil
	}
	return nil, ErrTokenNotFound
}

func (s *MemoryStore) UpdateMembership(ctx context.Context, userID uuid.UUID, tier Tier, expiresAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tier = tier
	u.MembershipExpiresAt = cloneTime(expiresAt)
	u.UpdatedAt = s.now()
	return nil
}

// Count returns the number of stored users.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func cloneUser(u *User) *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.ResetExpiresAt = cloneTime(u.ResetExpiresAt)
	c.MembershipExpiresAt = cloneTime(u.MembershipExpiresAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
