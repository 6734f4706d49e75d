package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgate/pkg/email"
	"github.com/dmitrymomot/authgate/pkg/validator"
)

// MockEmailSender is a mock implementation of EmailSender for testing
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params email.SendEmailParams
		fields []string
	}{
		{
			name:   "valid params",
			params: email.SendEmailParams{SendTo: "user@example.com", Subject: "Test", BodyHTML: "<p>x</p>", Tag: "test"},
		},
		{
			name:   "valid without tag",
			params: email.SendEmailParams{SendTo: "user@example.com", Subject: "Test", BodyHTML: "<p>x</p>"},
		},
		{
			name:   "display name rejected",
			params: email.SendEmailParams{SendTo: "User <user@example.com>", Subject: "Test", BodyHTML: "<p>x</p>"},
			fields: []string{"send_to"},
		},
		{
			name:   "everything missing",
			params: email.SendEmailParams{},
			fields: []string{"send_to", "subject", "body_html"},
		},
		{
			name:   "whitespace subject",
			params: email.SendEmailParams{SendTo: "user@example.com", Subject: "   ", BodyHTML: "<p>x</p>"},
			fields: []string{"subject"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, email.ErrInvalidParams)
			ve := validator.ExtractValidationErrors(err)
			assert.ElementsMatch(t, tt.fields, ve.Fields())
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "out")
		sender := email.NewDevSender(dir, email.WithDevClock(func() time.Time { return fixed }))

		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Reset your password",
			BodyHTML: "<p>hello</p>",
			Tag:      "password_reset",
		})
		require.NoError(t, err)

		base := filepath.Join(dir, "2025_03_04_050607.000000_password_reset")
		html, err := os.ReadFile(base + ".html")
		require.NoError(t, err)
		assert.Equal(t, "<p>hello</p>", string(html))

		raw, err := os.ReadFile(base + ".json")
		require.NoError(t, err)
		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "user@example.com", meta["send_to"])
		assert.Equal(t, "Reset your password", meta["subject"])
		assert.Equal(t, "password_reset", meta["tag"])
		assert.Equal(t, "2025-03-04T05:06:07Z", meta["timestamp"])
	})

	t.Run("falls back to subject", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir, email.WithDevClock(func() time.Time { return fixed }))

		require.NoError(t, sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo: "user@example.com", Subject: "Hello World!", BodyHTML: "<p>x</p>",
		}))

		_, err := os.Stat(filepath.Join(dir, "2025_03_04_050607.000000_hello_world.html"))
		assert.NoError(t, err)
	})

	t.Run("invalid params write nothing", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "never")
		err := email.NewDevSender(dir).SendEmail(context.Background(), email.SendEmailParams{})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		_, statErr := os.Stat(dir)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unwritable directory", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		err := email.NewDevSender(filepath.Join(file, "sub")).SendEmail(context.Background(), email.SendEmailParams{
			SendTo: "user@example.com", Subject: "s", BodyHTML: "<p>x</p>",
		})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := email.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "john.doe@example.com",
		Subject:  "Confirm your email address",
		BodyHTML: "<a href=\"https://x.test/?token=secret-token\">go</a>",
		Tag:      "verification",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "email suppressed")
	assert.Contains(t, out, "verification")
	assert.NotContains(t, out, "john.doe@example.com")
	assert.NotContains(t, out, "secret-token")
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     email.Config
		want    any
		wantErr bool
	}{
		{"default is log", email.Config{}, &email.LogSender{}, false},
		{"log", email.Config{Provider: email.ProviderLog}, &email.LogSender{}, false},
		{"dev", email.Config{Provider: email.ProviderDev, DevDir: "./tmp"}, &email.DevSender{}, false},
		{"dev without dir", email.Config{Provider: email.ProviderDev}, nil, true},
		{"postmark without tokens", email.Config{Provider: email.ProviderPostmark}, nil, true},
		{"unknown", email.Config{Provider: "smtp"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender, err := email.NewSender(tt.cfg, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, sender)
		})
	}
}

func TestEmailSender_Interface(t *testing.T) {
	t.Parallel()

	var _ email.EmailSender = (*email.DevSender)(nil)
	var _ email.EmailSender = (*email.LogSender)(nil)
	var _ email.EmailSender = (*MockEmailSender)(nil)
}
