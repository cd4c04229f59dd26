package notification

import (
	"StudentRequests/internal/config"
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer performs the actual delivery of one email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

func NewMailer(cfg *config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Transport {
	case config.MailTransportLog:
		return &LogMailer{logger: logger.Named("mail")}, nil
	case config.MailTransportResend:
		return &ResendMailer{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}, nil
	case config.MailTransportSMTP:
		return &SMTPMailer{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
			from:   cfg.From,
		}, nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("email", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(_ context.Context, to, subject, body string) error {
	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
