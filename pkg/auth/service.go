package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authgate/pkg/clientip"
	"github.com/dmitrymomot/authgate/pkg/logger"
	"github.com/dmitrymomot/authgate/pkg/ratelimiter"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// Service implements the account lifecycle operations.
type Service struct {
	users    UserStore
	sessions Sessions
	mailer   Mailer
	limiter  Limiter

	limits          RateLimits
	now             func() time.Time
	bcryptCost      int
	resetTokenTTL   time.Duration
	deliveryTimeout time.Duration
	passwordPolicy  validator.PasswordPolicy
	hideExisting    bool
	logger          *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte

	deliveries sync.WaitGroup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithResetTokenTTL sets how long a password reset token stays valid.
func WithResetTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTokenTTL = ttl
		}
	}
}

// WithDeliveryTimeout bounds each background mail delivery.
func WithDeliveryTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// WithPasswordPolicy replaces the password acceptance rules.
func WithPasswordPolicy(policy validator.PasswordPolicy) ServiceOption {
	return func(s *Service) {
		s.passwordPolicy = policy
	}
}

// WithHideExistingAccounts makes Register succeed silently for taken addresses.
func WithHideExistingAccounts(hide bool) ServiceOption {
	return func(s *Service) {
		s.hideExisting = hide
	}
}

// WithRateLimiter sets the limiter that guards operations.
func WithRateLimiter(l Limiter) ServiceOption {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithRateLimits replaces the per-operation bucket settings.
func WithRateLimits(limits RateLimits) ServiceOption {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithLogger sets the logger for background failures.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates an identity service. Without WithRateLimiter no operation is limited.
func NewService(users UserStore, sessions Sessions, mailer Mailer, opts ...ServiceOption) *Service {
	def := DefaultConfig()
	s := &Service{
		users:           users,
		sessions:        sessions,
		mailer:          mailer,
		limits:          DefaultRateLimits(),
		now:             time.Now,
		bcryptCost:      def.BcryptCost,
		resetTokenTTL:   def.ResetTokenTTL,
		deliveryTimeout: def.DeliveryTimeout,
		passwordPolicy:  def.PasswordPolicy,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewServiceFromConfig creates an identity service from environment settings.
// Options are applied after the config and win over it.
func NewServiceFromConfig(cfg Config, users UserStore, sessions Sessions, mailer Mailer, opts ...ServiceOption) *Service {
	base := []ServiceOption{
		WithBcryptCost(cfg.BcryptCost),
		WithResetTokenTTL(cfg.ResetTokenTTL),
		WithDeliveryTimeout(cfg.DeliveryTimeout),
		WithHideExistingAccounts(cfg.HideExistingAccounts),
	}
	if cfg.PasswordPolicy.MinLength > 0 {
		base = append(base, WithPasswordPolicy(cfg.PasswordPolicy))
	}
	return NewService(users, sessions, mailer, append(base, opts...)...)
}

// Drain blocks until in-flight mail deliveries finish or ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.deliveries.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// allow consumes one token from the operation's bucket for the calling client.
func (s *Service) allow(ctx context.Context, op string) error {
	if s.limiter == nil {
		return nil
	}
	cfg := s.limits.forOperation(op)
	if cfg.Capacity == 0 {
		return nil
	}

	client := clientip.GetIPFromContext(ctx)
	res, err := s.limiter.CheckAndConsume(ctx, ratelimiter.Key(op, client), cfg)
	if err != nil {
		return err
	}
	if !res.Allowed {
		s.logger.WarnContext(ctx, "rate limit exceeded",
			logger.Component("auth"),
			logger.Event(op),
			logger.ClientIP(client),
			slog.Int64("retry_after_ms", res.RetryAfterMs()),
		)
		return &RateLimitError{Operation: op, Wait: res.RetryAfter}
	}
	return nil
}

// deliver hands msg to the mailer in the background.
// Failures are logged and never reach the caller.
func (s *Service) deliver(ctx context.Context, msg Message) {
	if s.mailer == nil {
		return
	}

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(ctx, "panic in mail delivery",
					logger.Component("auth"),
					logger.Event(string(msg.Kind)),
					slog.Any("panic", r),
				)
			}
		}()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
		defer cancel()

		if err := s.mailer.Send(dctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "failed to deliver token",
				logger.Component("auth"),
				logger.Event(string(msg.Kind)),
				logger.Email(msg.To),
				logger.Error(err),
			)
		}
	}()
}

func (s *Service) hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
}

// dummyCompare spends the same bcrypt work as a real check.
func (s *Service) dummyCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("authgate-timing-equalizer"), s.bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}
