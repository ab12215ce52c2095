package service

import (
	"bitwise74/conference-api/internal/model"
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Mail = model.MailPayload

// Mailer delivers a single mail. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	if m.To == "" || m.To == s.from {
		return errors.New("invalid email address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	return s.dialer.DialAndSend(msg)
}

// LogMailer is used when mail delivery is disabled
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Mail) error {
	zap.L().Info("Mail delivery disabled, dropping mail", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}
