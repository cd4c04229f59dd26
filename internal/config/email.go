package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	MailTransportLog    = "log"
	MailTransportResend = "resend"
	MailTransportSMTP   = "smtp"
)

type MailConfig struct {
	Transport string
	From      string

	ResendAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

func NewMailConfig() (*MailConfig, error) {
	cfg := &MailConfig{
		Transport:    os.Getenv("MAIL_TRANSPORT"),
		From:         os.Getenv("FROM_EMAIL"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
	if cfg.Transport == "" {
		cfg.Transport = MailTransportLog
	}

	switch cfg.Transport {
	case MailTransportLog:
	case MailTransportResend:
		if cfg.ResendAPIKey == "" || cfg.From == "" {
			return nil, fmt.Errorf("resend transport requires RESEND_API_KEY and FROM_EMAIL")
		}
	case MailTransportSMTP:
		port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
		if cfg.SMTPHost == "" || cfg.From == "" {
			return nil, fmt.Errorf("smtp transport requires SMTP_HOST and FROM_EMAIL")
		}
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.Transport)
	}
	return cfg, nil
}
