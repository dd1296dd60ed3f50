package email

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"

	"github.com/medicare/pharmacy-api/internal/config"
)

// Sender delivers operational mail. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendWelcome(to, displayName string) error
}

type smtpSender struct {
	cfg    config.SMTPConfig
	clinic config.ClinicConfig
}

// NewSender returns an SMTP-backed sender, or a no-op sender when SMTP is
// disabled in config so callers never need to branch.
func NewSender(cfg config.SMTPConfig, clinic config.ClinicConfig) Sender {
	if !cfg.Enabled {
		return &noopSender{}
	}
	return &smtpSender{cfg: cfg, clinic: clinic}
}

func (s *smtpSender) SendWelcome(to, displayName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s", s.clinic.Name))
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hello %s,</p>
<p>An account has been created for you at %s.</p>
<p>Sign in with this email address and the password you were given, and change it after your first login.</p>
<p>%s</p>`,
		displayName, s.clinic.Name, s.clinic.Motto))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

type noopSender struct{}

func (n *noopSender) SendWelcome(to, _ string) error {
	log.Debug().Str("to", to).Msg("smtp disabled, skipping welcome email")
	return nil
}
