// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"github.com/wordzy/admin-api/internal/config"
)

// SMTP sends mail through an SMTP relay using go-mail.
type SMTP struct {
	smtp *config.SMTPConfig
	from *config.MailConfig
}

// NewSMTP creates an SMTP sender.
func NewSMTP(smtp *config.SMTPConfig, from *config.MailConfig) (*SMTP, error) {
	if smtp.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if from.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	return &SMTP{smtp: smtp, from: from}, nil
}

// Send delivers a single HTML message. The context bounds the whole
// dial-and-send exchange.
func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if s.from.FromName != "" {
		if err := msg.FromFormat(s.from.FromName, s.from.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.from.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.smtp.Port),
	}

	if s.smtp.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.smtp.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.smtp.Username != "" && s.smtp.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.smtp.Username),
			mail.WithPassword(s.smtp.Password),
		)
	}

	client, err := mail.NewClient(s.smtp.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
