// Package requestid tags every request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header or generates a UUID, stores the id in
// the request context and echoes it in the response. LogExtractor feeds the id to
// logger.WithContextExtractors so every log record of a request carries it.
package requestid
