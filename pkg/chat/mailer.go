package chat

import (
	"fmt"
	"net/smtp"

	"github.com/bizmate/bizmate/internal/config"
	log "github.com/sirupsen/logrus"
)

// Mailer sends plain text email on the assistant's behalf.
type Mailer interface {
	Send(to, subject, body string) error
}

// SmtpMailer delivers through a configured SMTP relay.
type SmtpMailer struct {
	cfg config.Smtp
}

func NewSmtpMailer(cfg config.Smtp) *SmtpMailer {
	return &SmtpMailer{cfg: cfg}
}

func (m *SmtpMailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp is not configured")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		err := fmt.Errorf("could not send email: %w", err)
		log.Error(err)
		return err
	}
	log.Infof("Sent email to %s", to)
	return nil
}
