// Package clientip resolves the identity of the calling client for rate limiting and logging.
//
// The client is identified by the first address in the X-Forwarded-For header. Requests
// without a parseable header collapse to the constant Unknown.
//
//   - GetIP extracts the client IP from an *http.Request.
//   - SetIPToContext and GetIPFromContext store and retrieve the resolved address.
//   - Middleware resolves once per request and stores the result in the request context,
//     so services deeper in the stack can build rate limit keys without seeing the request.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Use(clientip.Middleware)
//
//	func (s *Service) Login(ctx context.Context, ...) {
//		key := ratelimiter.Key("login", clientip.GetIPFromContext(ctx))
//	}
//
// The forwarded header is client controlled unless a trusted proxy overwrites it. Treat
// the value as a bucketing key, never as an authentication signal.
package clientip
