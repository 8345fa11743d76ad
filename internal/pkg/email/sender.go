package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers one rendered message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

// NewSender returns an SMTP sender, or a sender that only logs when SMTP
// credentials are not configured (local development).
func NewSender(config SMTPConfig, logger zerolog.Logger) Sender {
	if config.Username == "" || config.Password == "" || config.Host == "" {
		logger.Warn().Msg("SMTP credentials not configured - emails will be logged, not sent")
		return &LogSender{logger: logger}
	}
	if config.FromEmail == "" {
		config.FromEmail = config.Username
	}
	return &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// Send dials the relay and sends msg. gomail has no context support, so an
// expired ctx abandons the wait and the dial finishes in the background.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

// LogSender writes messages to the log instead of sending them
type LogSender struct {
	logger zerolog.Logger
}

// Send logs msg
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Email not sent (SMTP disabled)")
	return nil
}
