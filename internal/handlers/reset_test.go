// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordzy/admin-api/internal/config"
	"github.com/wordzy/admin-api/internal/identity"
	"github.com/wordzy/admin-api/internal/models"
	"github.com/wordzy/admin-api/internal/services/reset"
	"github.com/wordzy/admin-api/internal/store"
	"github.com/wordzy/admin-api/internal/testutil"
)

type stubProvider struct {
	lookupErr error
}

func (p *stubProvider) LookupByEmail(_ context.Context, email string) (*identity.Account, error) {
	if p.lookupErr != nil {
		return nil, p.lookupErr
	}
	return &identity.Account{UID: "uid-1", Email: email}, nil
}

func (p *stubProvider) SetPassword(context.Context, *identity.Account, string) error {
	return nil
}

type stubSender struct {
	mu  sync.Mutex
	err error
	n   int
}

func (s *stubSender) Send(context.Context, string, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.err
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func newTestHandlers(provider identity.Provider, st store.Store, sender *stubSender) *Handlers {
	cfg := &config.ResetConfig{
		FrontendURL:    "https://admin.wordzy.app/reset",
		TokenTTL:       time.Hour,
		PasswordLength: 12,
		CallTimeout:    5 * time.Second,
	}
	return New(reset.NewService(provider, st, sender, cfg))
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, method, target, strings.NewReader(body))

	require.NoError(t, handler(c))
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(&stubProvider{}, store.NewMemory(), &stubSender{})
	rec := doJSON(t, h.Health, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Server is running"}`, rec.Body.String())
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		sender := &stubSender{}
		mem := store.NewMemory()
		h := newTestHandlers(&stubProvider{}, mem, sender)

		rec := doJSON(t, h.ForgotPassword, http.MethodPost, "/api/forgot-password", `{"email":"user@example.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password reset email sent successfully")
		assert.Equal(t, 1, sender.count())
		assert.Equal(t, 1, mem.Len())
	})

	t.Run("missing email", func(t *testing.T) {
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), &stubSender{})

		for _, body := range []string{``, `{}`, `{"email":"  "}`} {
			rec := doJSON(t, h.ForgotPassword, http.MethodPost, "/api/forgot-password", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
			assert.Contains(t, rec.Body.String(), "Email is required")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), &stubSender{})

		rec := doJSON(t, h.ForgotPassword, http.MethodPost, "/api/forgot-password", `{"email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "valid email address")
	})

	t.Run("unknown account", func(t *testing.T) {
		provider := &stubProvider{lookupErr: identity.ErrAccountNotFound}
		h := newTestHandlers(provider, store.NewMemory(), &stubSender{})

		rec := doJSON(t, h.ForgotPassword, http.MethodPost, "/api/forgot-password", `{"email":"ghost@example.com"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "No account found with this email address")
	})

	t.Run("delivery failure", func(t *testing.T) {
		sender := &stubSender{err: errors.New("relay refused")}
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), sender)

		rec := doJSON(t, h.ForgotPassword, http.MethodPost, "/api/forgot-password", `{"email":"user@example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to send password reset email")
	})
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	verify := func(t *testing.T, h *Handlers, token string) *httptest.ResponseRecorder {
		t.Helper()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/verify-token/"+token, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("token")
		c.SetParamValues(token)

		require.NoError(t, h.VerifyToken(c))
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		mem := store.NewMemory()
		h := newTestHandlers(&stubProvider{}, mem, &stubSender{})

		rec := &models.ResetRecord{Token: "tok-1", Email: "user@example.com", TempPassword: "s3cret"}
		require.NoError(t, mem.Put(context.Background(), rec, time.Hour))

		res := verify(t, h, "tok-1")
		assert.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, `{"success":true,"email":"user@example.com","tempPassword":"s3cret"}`, res.Body.String())
	})

	t.Run("unknown token", func(t *testing.T) {
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), &stubSender{})

		res := verify(t, h, "deadbeef")
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Contains(t, res.Body.String(), "Invalid or expired reset token")
	})

	t.Run("expired token", func(t *testing.T) {
		mem := store.NewMemory()
		h := newTestHandlers(&stubProvider{}, mem, &stubSender{})

		rec := &models.ResetRecord{Token: "tok-old", Email: "user@example.com", TempPassword: "s3cret"}
		require.NoError(t, mem.Put(context.Background(), rec, -time.Minute))

		res := verify(t, h, "tok-old")
		assert.Equal(t, http.StatusGone, res.Code)
		assert.Contains(t, res.Body.String(), "Reset token has expired")

		// The expired record was evicted; a second probe is a plain miss.
		res = verify(t, h, "tok-old")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestPasswordChanged(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		sender := &stubSender{}
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), sender)

		rec := doJSON(t, h.PasswordChanged, http.MethodPost, "/api/password-changed", `{"email":"user@example.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Eventually(t, func() bool {
			return sender.count() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("missing email", func(t *testing.T) {
		h := newTestHandlers(&stubProvider{}, store.NewMemory(), &stubSender{})

		rec := doJSON(t, h.PasswordChanged, http.MethodPost, "/api/password-changed", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
