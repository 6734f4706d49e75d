package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// Size is the number of random bytes in a token (256 bits).
const Size = 32

// Generate returns a new URL-safe random token.
func Generate() (string, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrEntropy, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate() string {
	tok, err := Generate()
	if err != nil {
		panic(err)
	}
	return tok
}

// Hash returns the hex SHA-256 digest of tok, the form tokens are stored in.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// Equal compares two tokens or digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
