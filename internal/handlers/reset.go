// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/wordzy/admin-api/internal/services/reset"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type passwordChangedRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a temporary password for the given account and
// mails it together with a reset link.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Email is required")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return fail(c, http.StatusBadRequest, "Email is required")
	}

	err := h.reset.Issue(c.Request().Context(), email)
	switch {
	case errors.Is(err, reset.ErrInvalidEmail):
		return fail(c, http.StatusBadRequest, "Please enter a valid email address")
	case errors.Is(err, reset.ErrAccountNotFound):
		return fail(c, http.StatusNotFound, "No account found with this email address")
	case err != nil:
		slog.Error("forgot password request failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to send password reset email. Please try again later.")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Password reset email sent successfully. Please check your inbox.",
	})
}

// VerifyToken resolves a reset token to the email and temporary password
// it was issued for. Unknown tokens answer 404, expired tokens 410.
func (h *Handlers) VerifyToken(c echo.Context) error {
	token := c.Param("token")

	red, err := h.reset.Redeem(c.Request().Context(), token)
	switch {
	case errors.Is(err, reset.ErrTokenNotFound):
		return fail(c, http.StatusNotFound, "Invalid or expired reset token")
	case errors.Is(err, reset.ErrTokenExpired):
		return fail(c, http.StatusGone, "Reset token has expired. Please request a new password reset.")
	case err != nil:
		slog.Error("token verification failed", "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to verify reset token. Please try again later.")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"email":        red.Email,
		"tempPassword": red.TempPassword,
	})
}

// PasswordChanged triggers a best-effort confirmation mail after the user
// moved from the temporary password to a permanent one. The response does
// not wait for delivery.
func (h *Handlers) PasswordChanged(c echo.Context) error {
	var req passwordChangedRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Email is required")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return fail(c, http.StatusBadRequest, "Email is required")
	}

	h.reset.NotifyPasswordChanged(email)

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
	})
}
