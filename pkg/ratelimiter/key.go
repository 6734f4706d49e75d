package ratelimiter

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrymomot/authgate/pkg/clientip"
)

// maxKeyLength is the maximum allowed length for a rate limit key
// to prevent excessively long storage keys.
const maxKeyLength = 64

// Key builds the bucket key for an operation performed by a client.
// Operations never share buckets; an empty client becomes clientip.Unknown.
func Key(operation, client string) string {
	if client == "" {
		client = clientip.Unknown
	}

	key := operation + ":" + client
	if len(key) > maxKeyLength {
		sum := sha256.Sum256([]byte(key))
		return operation + ":" + hex.EncodeToString(sum[:16])
	}
	return key
}
