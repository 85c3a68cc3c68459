// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mailer delivers notification emails. Two bindings exist: direct
// SMTP and the MailChannels transactional HTTP API.
package mailer

import "context"

// Sender delivers a single HTML email. A non-nil error means the message
// was not accepted for delivery.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
