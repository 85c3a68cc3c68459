// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wordzy/admin-api/internal/config"
)

const defaultMailChannelsURL = "https://api.mailchannels.net/tx/v1/send"

// MailChannels sends mail through the MailChannels transactional HTTP API.
// Useful where no SMTP relay is reachable (the original deployment ran on
// an edge runtime).
type MailChannels struct {
	from     *config.MailConfig
	endpoint string
	client   *http.Client
}

// MailChannelsOption customizes a MailChannels sender.
type MailChannelsOption func(*MailChannels)

// WithMailChannelsEndpoint overrides the API endpoint, mainly for tests.
func WithMailChannelsEndpoint(endpoint string) MailChannelsOption {
	return func(m *MailChannels) { m.endpoint = endpoint }
}

// NewMailChannels creates a MailChannels sender with a 10 second request
// timeout.
func NewMailChannels(from *config.MailConfig, opts ...MailChannelsOption) *MailChannels {
	m := &MailChannels{
		from:     from,
		endpoint: defaultMailChannelsURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type mcAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mcContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mcPersonalization struct {
	To []mcAddress `json:"to"`
}

type mcPayload struct {
	Personalizations []mcPersonalization `json:"personalizations"`
	From             mcAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []mcContent         `json:"content"`
}

// Send delivers a single HTML message. Any non-2xx response is a delivery
// error.
func (m *MailChannels) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := mcPayload{
		Personalizations: []mcPersonalization{{To: []mcAddress{{Email: to}}}},
		From:             mcAddress{Email: m.from.From, Name: m.from.FromName},
		Subject:          subject,
		Content:          []mcContent{{Type: "text/html", Value: htmlBody}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling mailchannels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailchannels returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return nil
}
