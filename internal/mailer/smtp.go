package mailer

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

// SMTPConfig holds the outbound relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends rendered templates through an SMTP relay, retrying
// a few times with a growing pause.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
	log    *zap.SugaredLogger
	pause  time.Duration
}

// NewSMTPMailer returns a mailer bound to cfg.
func NewSMTPMailer(cfg SMTPConfig, log *zap.SugaredLogger) *SMTPMailer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{dialer: d, from: cfg.From, log: log, pause: time.Second}
}

// Send renders templateFile with data and delivers it, retrying on failure.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) error {
	msg, err := Render(templateFile, username, data)
	if err != nil {
		return err
	}

	out := mail.NewMessage()
	out.SetAddressHeader("From", m.from, FromName)
	out.SetAddressHeader("To", email, username)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/plain", msg.PlainBody)
	out.AddAlternative("text/html", msg.HTMLBody)

	for i := 0; i < maxRetries; i++ {
		if err = m.dialer.DialAndSend(out); err == nil {
			return nil
		}
		m.log.Warnw("mail send failed", "attempt", i+1, "to", email, "error", err)
		time.Sleep(m.pause * time.Duration(i+1))
	}
	return fmt.Errorf("send %s after %d attempts: %w", templateFile, maxRetries, err)
}
