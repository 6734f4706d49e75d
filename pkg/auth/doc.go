// Package auth implements the account lifecycle: registration, email verification, login,
// logout, password reset and membership updates.
//
// A Service drives each account through its states:
//
//	Unregistered → PendingVerification → Verified
//
// Login state (a live session) is orthogonal to verification: unverified users may log in,
// and gates that need a verified address check it separately. A pending password reset is a
// side channel that any state may open.
//
// # Collaborators
//
// The service owns no storage. It is built from:
//
//   - UserStore: durable users with atomic token consumption
//   - Sessions: issue, resolve and revoke sessions (session.Manager)
//   - Mailer: fire-and-forget delivery of verification and reset tokens
//   - Limiter: token buckets guarding each sensitive operation (ratelimiter.Limiter)
//
// # Tokens
//
// Verification and reset tokens are 256-bit random strings. Only their SHA-256 digests are
// stored; consuming a token is a single conditional update in the store, so of two concurrent
// uses exactly one succeeds. Issuing a new token of a kind replaces the previous one.
//
// # Enumeration resistance
//
// RequestPasswordReset and ResendVerification succeed identically whether or not the address
// belongs to an account. Login reports ErrInvalidCredentials for unknown addresses and wrong
// passwords alike, and spends a bcrypt comparison in both cases. Register reports a taken
// address as a validation error unless WithHideExistingAccounts is set.
//
// # Errors
//
// Expected outcomes are sentinel errors (ErrInvalidCredentials, ErrInvalidToken,
// ErrInvalidOrExpiredToken, ErrUnauthorized, ErrRateLimited) or validator.ValidationErrors.
// Anything else is an infrastructure failure and is returned wrapped.
package auth
