// Package logger builds the service's slog.Logger and provides shared attribute helpers.
//
// New applies functional options over JSON/INFO defaults. WithEnvironment picks text output at
// debug level for development and JSON at info level elsewhere, and tags every record with
// the service name and environment. Context extractors pull request-scoped values such as the
// request id into each record at logging time.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(cfg.Env), "authgate"),
//		logger.WithContextExtractors(requestid.LogExtractor),
//	)
//
//	log.ErrorContext(ctx, "failed to send email",
//		logger.Component("identity"),
//		logger.UserID(user.ID),
//		logger.Error(err),
//	)
//
// Helpers return an empty slog.Attr for nil input, which slog drops.
package logger
