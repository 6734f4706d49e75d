// Package session issues, resolves and revokes login sessions.
//
// A session is identified by an opaque 256-bit token that lives only in the client's cookie.
// Stores key sessions by the SHA-256 digest of that token, so reading the session table never
// yields a usable credential. A user may hold any number of sessions at once.
//
// # Usage
//
//	mgr := session.New(store, session.WithTTL(30*24*time.Hour))
//
//	tok, sess, err := mgr.Create(ctx, user.ID)    // at login
//	sess, err := mgr.Resolve(ctx, tok)            // per request
//	err = mgr.Destroy(ctx, tok)                   // logout, idempotent
//	err = mgr.DestroyAll(ctx, user.ID)            // logout everywhere, password reset
//
// Resolve returns ErrSessionNotFound when the token is unknown or the session has expired.
// It never extends the expiry. Any other error is a storage failure and must not be treated
// as "no session".
//
// # Stores
//
//   - MemoryStore keeps sessions in process memory with periodic expiry sweeps.
//   - RedisStore keeps each session in a hash with a native TTL plus a per-user index set;
//     DeleteByUserID runs as one Lua script.
//   - The PostgreSQL store lives in pkg/store/postgres.
//
// # Transport
//
// CookieTransport carries the token in a signed, HttpOnly cookie. HasToken is a presence check
// only; it is meant for cheap edge gating and proves nothing about validity.
package session
