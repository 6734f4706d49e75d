// Package token issues the opaque secrets used for sessions, email verification and
// password resets.
//
// A token is 32 bytes from crypto/rand encoded as unpadded base64url (43 characters).
// Only the SHA-256 digest of a token is ever persisted; lookups hash the presented value
// and match digests, so a leaked table does not leak usable tokens.
//
// # Usage
//
//	tok, err := token.Generate()
//	if err != nil {
//		return err
//	}
//	user.VerificationTokenHash = token.Hash(tok)
//	// send tok to the user, never store it
//
// Returns ErrEntropy when the system random source fails.
package token
