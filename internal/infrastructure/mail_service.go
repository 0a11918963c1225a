package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	welcomeSubject = "Welcome to CryptoPulse"
	welcomeText    = "Your CryptoPulse account is ready. Log in to open the market terminal."
	welcomeHTML    = "<strong>Your CryptoPulse account is ready.</strong> Log in to open the market terminal."
)

// MaskKey keeps the first and last four characters of an API key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// SendGridMailer sends account mail through SendGrid.
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
	logger *slog.Logger
}

func NewSendGridMailer(apiKey, sender string, logger *slog.Logger) *SendGridMailer {
	logger.Info("mailer configured", "provider", "sendgrid", "api_key", MaskKey(apiKey), "sender", sender)
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
		logger: logger,
	}
}

func (m *SendGridMailer) SendWelcome(ctx context.Context, recipientEmail string) error {
	from := mail.NewEmail("CryptoPulse", m.sender)
	to := mail.NewEmail("", recipientEmail)
	message := mail.NewSingleEmail(from, welcomeSubject, to, welcomeText, welcomeHTML)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", response.StatusCode)
	}

	m.logger.Debug("welcome mail sent", "provider", "sendgrid", "status", response.StatusCode)
	return nil
}

// ResendMailer sends account mail through Resend.
type ResendMailer struct {
	client *resend.Client
	sender string
	logger *slog.Logger
}

func NewResendMailer(apiKey, sender string, logger *slog.Logger) *ResendMailer {
	logger.Info("mailer configured", "provider", "resend", "api_key", MaskKey(apiKey), "sender", sender)
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		sender: sender,
		logger: logger,
	}
}

func (m *ResendMailer) SendWelcome(ctx context.Context, recipientEmail string) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{recipientEmail},
		Subject: welcomeSubject,
		Text:    welcomeText,
		Html:    welcomeHTML,
	}

	response, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	m.logger.Debug("welcome mail sent", "provider", "resend", "id", response.Id)
	return nil
}

// NoopMailer is used when no mail provider is configured.
type NoopMailer struct{}

func (NoopMailer) SendWelcome(context.Context, string) error { return nil }
