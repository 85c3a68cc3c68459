// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Toolkit is the unprivileged Provider binding. It talks to the public
// Identity Toolkit REST API with a web API key instead of a service
// account.
type Toolkit struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// ToolkitOption customizes a Toolkit client.
type ToolkitOption func(*Toolkit)

// WithToolkitBaseURL overrides the API endpoint, mainly for tests.
func WithToolkitBaseURL(baseURL string) ToolkitOption {
	return func(t *Toolkit) { t.baseURL = baseURL }
}

// WithToolkitHTTPClient overrides the HTTP client.
func WithToolkitHTTPClient(client *http.Client) ToolkitOption {
	return func(t *Toolkit) { t.client = client }
}

// NewToolkit creates a Toolkit client with a 10 second request timeout.
func NewToolkit(apiKey string, opts ...ToolkitOption) *Toolkit {
	t := &Toolkit{
		apiKey:  apiKey,
		baseURL: defaultToolkitBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type toolkitUser struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type lookupResponse struct {
	Users []toolkitUser `json:"users"`
}

// LookupByEmail resolves an account through accounts:lookup. An empty user
// list means the account does not exist.
func (t *Toolkit) LookupByEmail(ctx context.Context, email string) (*Account, error) {
	body := map[string]any{"email": []string{email}}

	var resp lookupResponse
	if err := t.post(ctx, "accounts:lookup", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, ErrAccountNotFound
	}

	return &Account{UID: resp.Users[0].LocalID, Email: resp.Users[0].Email}, nil
}

// SetPassword overwrites the account's password through accounts:update.
func (t *Toolkit) SetPassword(ctx context.Context, account *Account, password string) error {
	body := map[string]any{
		"localId":           account.UID,
		"password":          password,
		"returnSecureToken": false,
	}
	return t.post(ctx, "accounts:update", body, nil)
}

func (t *Toolkit) post(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", t.baseURL, method, url.QueryEscape(t.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The API key never appears in errors; the response body can
		// carry provider diagnostics.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	return nil
}
