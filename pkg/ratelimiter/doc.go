// Package ratelimiter provides token bucket rate limiting with an in-memory store and HTTP middleware.
//
// Each key owns a bucket that holds up to Capacity tokens and refills continuously at
// RefillPerSecond tokens per second (fractional rates such as 0.2/s are allowed). Refill is
// lazy: it is computed from the elapsed time whenever the bucket is touched, so idle buckets
// cost nothing until they are used again.
//
// # Basic Usage
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter := ratelimiter.NewLimiter(store)
//
//	result, err := limiter.CheckAndConsume(ctx, ratelimiter.Key("resend_verification", ip),
//		ratelimiter.Config{Capacity: 5, RefillPerSecond: 0.2})
//	if err != nil {
//		return err
//	}
//	if !result.Allowed {
//		// retry after result.RetryAfter
//	}
//
// A Bucket binds a limiter to one configuration:
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 60, RefillPerSecond: 1})
//	result, err := bucket.Allow(ctx, key)
//
// # Keys
//
// Key combines an operation name with a client identity so that different operations never
// share a bucket. An empty client collapses to clientip.Unknown. Keys longer than 64
// characters are hashed.
//
// # HTTP Middleware
//
//	mw := ratelimiter.Middleware(bucket, func(r *http.Request) string {
//		return ratelimiter.Key("auth_api", clientip.GetIP(r))
//	})
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and, when denying, Retry-After.
// Use WithErrorResponder to customize the denial response.
//
// # Memory Management
//
// The MemoryStore removes buckets that have not been touched for an hour. The sweep interval
// is configured with WithCleanupInterval; zero disables it.
//
// # Consistency
//
// The read-modify-write of a bucket happens under the store lock, so concurrent requests for
// the same key can never both spend the last token. State is process local: several replicas
// each keep their own buckets.
package ratelimiter
