package utils

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, email, code string) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// SendPasswordResetEmail sends an email with a password reset code
func (m *SMTPMailer) SendPasswordResetEmail(_ context.Context, email, code string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	to := []string{email}
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: CodeArena Password Reset\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"<p>Your password reset code is: <strong>%s</strong></p>\r\n"+
			"<p>The code expires in 15 minutes.</p>\r\n",
		email, m.cfg.SenderName, m.cfg.SenderEmail, code))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.SenderEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// LogMailer is used when no SMTP relay is configured (local development).
type LogMailer struct{}

func (LogMailer) SendPasswordResetEmail(_ context.Context, email, code string) error {
	log.Printf("SMTP not configured; password reset code for %s: %s", email, code)
	return nil
}
