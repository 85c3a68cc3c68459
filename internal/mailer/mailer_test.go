// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordzy/admin-api/internal/config"
	"github.com/wordzy/admin-api/internal/mailer"
)

func mailConfig() *config.MailConfig {
	return &config.MailConfig{
		Backend:  "mailchannels",
		From:     "noreply@wordzy.app",
		FromName: "Wordzy Admin",
	}
}

func TestRenderResetEmail(t *testing.T) {
	body, err := mailer.RenderResetEmail("Temp!Pass2345", "https://admin.wordzy.app?token=abc123")
	require.NoError(t, err)

	assert.Contains(t, body, "Temp!Pass2345")
	assert.Contains(t, body, "https://admin.wordzy.app?token=abc123")
	assert.Contains(t, body, "expire in 1 hour")
	assert.Contains(t, body, fmt.Sprintf("%d", time.Now().Year()))
}

func TestRenderResetEmail_EscapesPassword(t *testing.T) {
	// The alphabet cannot produce markup, but the template must still
	// escape whatever it is handed.
	body, err := mailer.RenderResetEmail("<script>", "https://example.com")
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestRenderPasswordChangedEmail(t *testing.T) {
	body, err := mailer.RenderPasswordChangedEmail()
	require.NoError(t, err)

	assert.Contains(t, body, "Password Changed")
	assert.Contains(t, body, "was just changed")
}

func TestNewSMTP_Validation(t *testing.T) {
	_, err := mailer.NewSMTP(&config.SMTPConfig{}, mailConfig())
	assert.ErrorContains(t, err, "SMTP host is required")

	_, err = mailer.NewSMTP(&config.SMTPConfig{Host: "smtp.example.com"}, &config.MailConfig{})
	assert.ErrorContains(t, err, "sender address is required")

	sender, err := mailer.NewSMTP(&config.SMTPConfig{Host: "smtp.example.com", Port: 587}, mailConfig())
	require.NoError(t, err)
	assert.NotNil(t, sender)
}

func TestMailChannels_Send(t *testing.T) {
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	mc := mailer.NewMailChannels(mailConfig(), mailer.WithMailChannelsEndpoint(srv.URL))

	err := mc.Send(context.Background(), "user@example.com", "Subject", "<p>Hi</p>")
	require.NoError(t, err)

	from := gotPayload["from"].(map[string]any)
	assert.Equal(t, "noreply@wordzy.app", from["email"])
	assert.Equal(t, "Wordzy Admin", from["name"])
	assert.Equal(t, "Subject", gotPayload["subject"])

	content := gotPayload["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "text/html", content["type"])
	assert.Equal(t, "<p>Hi</p>", content["value"])
}

func TestMailChannels_Send_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	mc := mailer.NewMailChannels(mailConfig(), mailer.WithMailChannelsEndpoint(srv.URL))

	err := mc.Send(context.Background(), "user@example.com", "Subject", "<p>Hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestMailChannels_Send_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	mc := mailer.NewMailChannels(mailConfig(), mailer.WithMailChannelsEndpoint(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, mc.Send(ctx, "user@example.com", "Subject", "<p>Hi</p>"))
}
