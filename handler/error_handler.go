package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/authgate/pkg/binder"
	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/requestid"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// ErrorInfo is the client-facing classification of an error.
type ErrorInfo struct {
	StatusCode int
	Detail     *ErrorDetail
	RetryAfter time.Duration
	LogLevel   slog.Level
}

// ErrorMapper translates domain errors into HTTPError (or anything classifyError understands).
// Returning err unchanged leaves it to the default rules.
type ErrorMapper func(err error) error

// ErrorHandlerOption configures NewErrorHandler.
type ErrorHandlerOption func(*errorHandlerConfig)

type errorHandlerConfig struct {
	mappers []ErrorMapper
}

// WithErrorMapper registers a domain error mapper. Mappers run in order;
// validation errors skip them.
func WithErrorMapper(m ErrorMapper) ErrorHandlerOption {
	return func(c *errorHandlerConfig) {
		if m != nil {
			c.mappers = append(c.mappers, m)
		}
	}
}

type retryAfterer interface {
	RetryAfter() time.Duration
}

// classifyError picks status and body for err. Server errors never expose err's text.
func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Detail: &ErrorDetail{
			Code:    ErrInternalServerError.Key,
			Message: "An error occurred processing your request",
		},
	}

	var httpErr HTTPError
	switch {
	case validator.IsValidationError(err):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Detail = &ErrorDetail{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: validationDetails(validator.ExtractValidationErrors(err)),
		}
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Detail = &ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
	case binder.IsBindingError(err):
		info.StatusCode = http.StatusBadRequest
		info.Detail = &ErrorDetail{Code: ErrBadRequest.Key, Message: err.Error()}
	}

	var ra retryAfterer
	if errors.As(err, &ra) && ra.RetryAfter() > 0 {
		info.RetryAfter = ra.RetryAfter()
		info.Detail.RetryAfterMs = int64(math.Ceil(float64(info.RetryAfter) / float64(time.Millisecond)))
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

func validationDetails(ve validator.ValidationErrors) map[string][]string {
	if len(ve) == 0 {
		return nil
	}
	details := make(map[string][]string, len(ve))
	for _, e := range ve {
		details[e.Field] = append(details[e.Field], e.Message)
	}
	return details
}

// NewErrorHandler renders errors as JSON envelopes and logs them with the request id.
func NewErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	var cfg errorHandlerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx Context, err error) {
		mapped := err
		if !validator.IsValidationError(err) {
			for _, m := range cfg.mappers {
				mapped = m(mapped)
			}
		}

		info := classifyError(mapped)
		r := ctx.Request()

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		w := ctx.ResponseWriter()
		if info.RetryAfter > 0 {
			secs := max(int64(math.Ceil(info.RetryAfter.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		}

		if renderErr := JSONError(info.StatusCode, info.Detail).Render(w, r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.RequestID(requestid.FromContext(r.Context())),
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
