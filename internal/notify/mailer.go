package notify

import (
	"log"
	"net/smtp"
	"os"
)

// Mailer delivers a single plain-text message. Delivery is best-effort: the
// caller logs and discards any error.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailerFromEnv builds a mailer from SMTP_* environment variables.
// Returns nil when SMTP_HOST is unset.
func SMTPMailerFromEnv() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	return &SMTPMailer{
		Host:     host,
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body + "\r\n")
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
}

// LogMailer stands in when SMTP is unconfigured (local development).
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Printf("mail (dry run) to=%s subject=%q", to, subject)
	return nil
}
