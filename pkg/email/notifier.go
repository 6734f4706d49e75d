package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/authgate/pkg/auth"
	"github.com/dmitrymomot/authgate/pkg/email/templates"
)

// Notifier turns auth messages into emails. It implements auth.Mailer.
type Notifier struct {
	sender      EmailSender
	base        *url.URL
	productName string
	verifyPath  string
	resetPath   string
}

var _ auth.Mailer = (*Notifier)(nil)

// NewNotifier validates cfg.BaseURL and returns a Notifier sending through sender.
func NewNotifier(sender EmailSender, cfg Config) (*Notifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: BaseURL must be an absolute http(s) URL", ErrInvalidConfig)
	}

	n := &Notifier{
		sender:      sender,
		base:        base,
		productName: cfg.ProductName,
		verifyPath:  cfg.VerifyPath,
		resetPath:   cfg.ResetPath,
	}
	if n.productName == "" {
		n.productName = "Authgate"
	}
	if n.verifyPath == "" {
		n.verifyPath = "/verify-email"
	}
	if n.resetPath == "" {
		n.resetPath = "/reset-password"
	}
	return n, nil
}

// Send renders msg and hands it to the sender.
func (n *Notifier) Send(ctx context.Context, msg auth.Message) error {
	var (
		subject string
		tpl     templ.Component
	)
	switch msg.Kind {
	case auth.TokenVerification:
		subject = "Confirm your email address"
		tpl = templates.VerifyEmail(templates.VerifyEmailData{
			ProductName: n.productName,
			Link:        n.link(n.verifyPath, msg.Token),
		})
	case auth.TokenPasswordReset:
		subject = "Reset your password"
		data := templates.ResetPasswordData{
			ProductName: n.productName,
			Link:        n.link(n.resetPath, msg.Token),
		}
		if msg.ExpiresAt != nil {
			data.ExpiresAt = *msg.ExpiresAt
		}
		tpl = templates.ResetPassword(data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}

	body, err := templates.Render(ctx, tpl)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrFailedToSendEmail, msg.Kind, err)
	}

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   msg.To,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(msg.Kind),
	})
}

func (n *Notifier) link(path, token string) string {
	u := *n.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = url.Values{"token": {token}}.Encode()
	u.Fragment = ""
	return u.String()
}
