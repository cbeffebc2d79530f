// Package email delivers out-of-band messages. The sender is constructed
// once at startup from configuration and injected; deployments without SMTP
// credentials get a no-op sender instead of nil checks at call sites.
package email

import (
	"context"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Sender delivers one message, fire-and-forget from the caller's view.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
	// Enabled reports whether messages actually leave the process. Callers
	// use it to report which delivery channels were used.
	Enabled() bool
}

// Config carries SMTP settings. Empty Host or Username disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether the config is complete enough to send.
func (c Config) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// New returns an SMTP sender when configured, a no-op sender otherwise.
func New(cfg Config, logger *slog.Logger) Sender {
	if !cfg.Configured() {
		logger.Warn("email delivery not configured, sender disabled")
		return NoopSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// SMTPSender delivers via SMTP using gomail.
type SMTPSender struct {
	cfg Config
}

func (s *SMTPSender) Send(_ context.Context, to, subject, text, html string) error {
	m := gomail.NewMessage()
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

func (s *SMTPSender) Enabled() bool { return true }

// NoopSender swallows messages. Used when delivery is unconfigured, which is
// a deployment-time condition rather than an error.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string, string, string) error { return nil }

func (NoopSender) Enabled() bool { return false }
