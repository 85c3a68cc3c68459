// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package reset orchestrates the credential-reset flow: issue a temporary
// password out-of-band and redeem the matching opaque token.
package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/wordzy/admin-api/internal/config"
	"github.com/wordzy/admin-api/internal/identity"
	"github.com/wordzy/admin-api/internal/mailer"
	"github.com/wordzy/admin-api/internal/metrics"
	"github.com/wordzy/admin-api/internal/models"
	"github.com/wordzy/admin-api/internal/secrets"
	"github.com/wordzy/admin-api/internal/store"
)

// Error taxonomy of the reset flow. Every collaborator failure is mapped
// to exactly one of these at this boundary.
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrAccountNotFound = errors.New("account not found")
	ErrProvider        = errors.New("identity provider error")
	ErrDelivery        = errors.New("email delivery error")
	ErrTokenNotFound   = errors.New("reset token not found")
	ErrTokenExpired    = errors.New("reset token expired")
)

// Redemption is what a valid token resolves to: enough for the client to
// re-authenticate and move the user to a permanent password.
type Redemption struct {
	Email        string `json:"email"`
	TempPassword string `json:"tempPassword"`
}

// Service coordinates the identity provider, the record store and the
// mail sender. It is the only component with reset business logic; both
// provider bindings and both store backends run through the same code.
type Service struct {
	provider identity.Provider
	store    store.Store
	sender   mailer.Sender
	cfg      *config.ResetConfig
}

// NewService wires a coordinator from its three collaborators.
func NewService(provider identity.Provider, st store.Store, sender mailer.Sender, cfg *config.ResetConfig) *Service {
	return &Service{
		provider: provider,
		store:    st,
		sender:   sender,
		cfg:      cfg,
	}
}

// Issue rotates the account's password to a fresh temporary one, stores a
// reset record under a new token and emails both to the account owner.
//
// The provider update and the email delivery are not atomic: when delivery
// fails the password has already been rotated to a value the user never
// received. That failure is surfaced hard and never swallowed; retrying
// the whole call is safe because it rotates the password again and
// resends. Rollback is not possible, the provider offers none.
func (s *Service) Issue(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		metrics.ResetsIssued.WithLabelValues("invalid_email").Inc()
		return ErrInvalidEmail
	}

	// Correlates the log lines of one attempt. The token and password
	// themselves are never logged.
	attempt := uuid.New().String()

	account, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	password, err := secrets.GeneratePassword(s.cfg.PasswordLength)
	if err != nil {
		metrics.ResetsIssued.WithLabelValues("provider_error").Inc()
		return fmt.Errorf("generating temporary password: %w", err)
	}
	token, err := secrets.GenerateToken()
	if err != nil {
		metrics.ResetsIssued.WithLabelValues("provider_error").Inc()
		return fmt.Errorf("generating reset token: %w", err)
	}

	// Irreversible step: from here on the account's real password is the
	// temporary one, whether or not the user ever learns it.
	if err := s.setPassword(ctx, account, password); err != nil {
		metrics.ResetsIssued.WithLabelValues("provider_error").Inc()
		slog.Error("password rotation failed", "attempt", attempt, "error", err)
		return err
	}

	rec := &models.ResetRecord{
		Token:        token,
		Email:        email,
		TempPassword: password,
	}
	if err := s.store.Put(ctx, rec, s.cfg.TokenTTL); err != nil {
		metrics.ResetsIssued.WithLabelValues("store_error").Inc()
		slog.Error("storing reset record failed", "attempt", attempt, "error", err)
		return fmt.Errorf("storing reset record: %w", err)
	}

	if err := s.sendResetMail(ctx, email, password, token); err != nil {
		metrics.ResetsIssued.WithLabelValues("delivery_error").Inc()
		slog.Error("reset mail delivery failed", "attempt", attempt, "error", err)
		return err
	}

	metrics.ResetsIssued.WithLabelValues("success").Inc()
	slog.Info("password reset issued", "attempt", attempt)
	return nil
}

// Redeem resolves a token to the email and temporary password it was
// issued for. The record is not consumed; the client may fetch it again
// until it expires.
func (s *Service) Redeem(ctx context.Context, token string) (*Redemption, error) {
	rec, err := s.store.Get(ctx, token)
	switch {
	case errors.Is(err, store.ErrExpired):
		metrics.TokensRedeemed.WithLabelValues("expired").Inc()
		return nil, ErrTokenExpired
	case errors.Is(err, store.ErrNotFound):
		metrics.TokensRedeemed.WithLabelValues("not_found").Inc()
		return nil, ErrTokenNotFound
	case err != nil:
		metrics.TokensRedeemed.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("reading reset record: %w", err)
	}

	metrics.TokensRedeemed.WithLabelValues("success").Inc()
	return &Redemption{Email: rec.Email, TempPassword: rec.TempPassword}, nil
}

// NotifyPasswordChanged sends a best-effort confirmation after a
// self-service password change. It runs detached from the caller; failure
// is logged and never propagated.
func (s *Service) NotifyPasswordChanged(email string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
		defer cancel()

		body, err := mailer.RenderPasswordChangedEmail()
		if err != nil {
			slog.Warn("password changed notification skipped", "error", err)
			return
		}
		if err := s.sender.Send(ctx, email, mailer.PasswordChangedSubject, body); err != nil {
			slog.Warn("password changed notification failed", "error", err)
		}
	}()
}

func (s *Service) lookup(ctx context.Context, email string) (*identity.Account, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	account, err := s.provider.LookupByEmail(callCtx, email)
	if errors.Is(err, identity.ErrAccountNotFound) {
		metrics.ResetsIssued.WithLabelValues("account_not_found").Inc()
		return nil, ErrAccountNotFound
	}
	if err != nil {
		metrics.ResetsIssued.WithLabelValues("provider_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return account, nil
}

func (s *Service) setPassword(ctx context.Context, account *identity.Account, password string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	if err := s.provider.SetPassword(callCtx, account, password); err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return nil
}

func (s *Service) sendResetMail(ctx context.Context, email, password, token string) error {
	link := fmt.Sprintf("%s?token=%s", strings.TrimRight(s.cfg.FrontendURL, "/"), url.QueryEscape(token))

	body, err := mailer.RenderResetEmail(password, link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	if err := s.sender.Send(callCtx, email, mailer.ResetSubject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
