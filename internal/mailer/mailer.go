package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/wiederlebendig/lead-attribution-service/internal/config"
)

// Sender defines the interface for outbound mail
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through the configured SMTP relay
type SMTPMailer struct {
	config config.SMTP
	log    *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTP, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{config: cfg, log: log}
}

// Send sends a plain-text email
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.config.Host, m.config.Port, m.config.User, m.config.Pass)

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
