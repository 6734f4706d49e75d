package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/authgate/pkg/logger"
)

// LogSender records each message at info level and sends nothing.
// Bodies are never logged: they carry single-use tokens.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = logger.Noop()
	}
	return &LogSender{logger: log}
}

func (s *LogSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email suppressed",
		logger.Component("email"),
		logger.Email(params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}

// NewSender builds the EmailSender selected by cfg.Provider.
func NewSender(cfg Config, log *slog.Logger) (EmailSender, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkClient(cfg)
	case ProviderDev:
		if cfg.DevDir == "" {
			return nil, ErrInvalidConfig
		}
		return NewDevSender(cfg.DevDir), nil
	case ProviderLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
