package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// deleteSessionScript removes one session hash and its entry in the owner's index.
const deleteSessionScript = `
local uid = redis.call("HGET", KEYS[1], "user_id")
if uid then
  redis.call("SREM", ARGV[1] .. uid, ARGV[2])
end
return redis.call("DEL", KEYS[1])
`

// deleteUserSessionsScript removes every session listed in the user's index and the index
// itself in one step, so no session of the user survives a concurrent resolve.
const deleteUserSessionsScript = `
local ids = redis.call("SMEMBERS", KEYS[1])
for _, id in ipairs(ids) do
  redis.call("DEL", ARGV[1] .. id)
end
redis.call("DEL", KEYS[1])
return #ids
`

var (
	deleteSessionLua      = redis.NewScript(deleteSessionScript)
	deleteUserSessionsLua = redis.NewScript(deleteUserSessionsScript)
)

// RedisStore implements Store on Redis.
//
// Layout: <prefix>:<digest> is a hash {user_id, created_at, expires_at} carrying the
// session's native TTL; <prefix>:user:<uuid> is a set of the user's digests.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store using keys under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "sess"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(tokenHash string) string {
	return s.prefix + ":" + tokenHash
}

func (s *RedisStore) userKeyPrefix() string {
	return s.prefix + ":user:"
}

func (s *RedisStore) userKey(userID uuid.UUID) string {
	return s.userKeyPrefix() + userID.String()
}

// Create stores a new session
func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.TokenHash == "" || session.UserID == uuid.Nil {
		return ErrInvalidSession
	}

	key := s.key(session.TokenHash)
	fields := map[string]any{
		"user_id":    session.UserID.String(),
		"created_at": session.CreatedAt.UnixNano(),
	}
	if session.ExpiresAt != nil {
		fields["expires_at"] = session.ExpiresAt.UnixNano()
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if session.ExpiresAt != nil {
			pipe.PExpireAt(ctx, key, *session.ExpiresAt)
		}
		pipe.SAdd(ctx, s.userKey(session.UserID), session.TokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create session: %w", err)
	}
	return nil
}

// Get retrieves a session by token digest
func (s *RedisStore) Get(ctx context.Context, tokenHash string) (*Session, error) {
	values, err := s.client.HGetAll(ctx, s.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(values["user_id"])
	if err != nil {
		return nil, fmt.Errorf("redis get session: corrupt user_id: %w", err)
	}
	created, err := strconv.ParseInt(values["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis get session: corrupt created_at: %w", err)
	}

	session := &Session{
		TokenHash: tokenHash,
		UserID:    userID,
		CreatedAt: time.Unix(0, created).UTC(),
	}

	if raw, ok := values["expires_at"]; ok {
		exp, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis get session: corrupt expires_at: %w", err)
		}
		t := time.Unix(0, exp).UTC()
		session.ExpiresAt = &t
	}

	return session, nil
}

// Delete removes a session by token digest
func (s *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	err := deleteSessionLua.Run(ctx, s.client, []string{s.key(tokenHash)}, s.userKeyPrefix(), tokenHash).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a specific user
func (s *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	err := deleteUserSessionsLua.Run(ctx, s.client, []string{s.userKey(userID)}, s.prefix+":").Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires session hashes on its own. Stale digests left in
// user index sets point at missing keys and are dropped on the user's next DeleteByUserID.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) error {
	return nil
}
