package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional email. Implementations report
// transport failures so callers can distinguish them from
// persistence failures.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates an SMTPMailer. With an empty host the mailer
// logs and drops messages, which keeps local development working
// without a relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	m := &SMTPMailer{from: from}
	if host != "" && username != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if m.dialer == nil {
		log.Printf("[Mail] SMTP not configured, dropping message to %s (%s)", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mail] Failed to send to %s: %v", to, err)
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

// VerificationEmailBody renders the signup verification message.
func VerificationEmailBody(code string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
  <h2>Verify your email</h2>
  <p>Use the code below to finish creating your account. It expires in 10 minutes.</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p>If you did not request this, you can ignore this email.</p>
</div>`, code)
}

// PasswordResetEmailBody renders the password-reset message.
func PasswordResetEmailBody(code string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
  <h2>Password reset request</h2>
  <p>Enter this code to reset your password. It expires in 10 minutes.</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p>If you did not request a reset, your account is still secure and no action is needed.</p>
</div>`, code)
}
