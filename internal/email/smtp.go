package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/careflow/clinic-api/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPService builds a mail service over a fixed outbound relay.
func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendTemporaryPassword(ctx context.Context, to, tempPassword string) error {
	body := fmt.Sprintf(
		"Your new temporary password is: %s\nPlease change it after logging in.",
		tempPassword,
	)
	return s.SendCustom(ctx, to, "Password Reset", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
