// Package mailer delivers outbound email over SMTP.
package mailer

import (
	"gopkg.in/gomail.v2"

	"github.com/libtrary/libtrary/internal/config"
)

// Mailer performs a single best-effort delivery. Retries live in the task
// queue, not here.
type Mailer interface {
	Send(subject, body, to string) error
}

// SMTPMailer sends plain-text mail through a configured SMTP host.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from mail configuration.
func NewSMTPMailer(cfg config.Mail) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, "", ""),
		from:   cfg.From,
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(subject, body, to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
