// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wordzy/admin-api/internal/services/reset"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	reset *reset.Service
}

// New creates a new Handlers instance.
func New(resetService *reset.Service) *Handlers {
	return &Handlers{reset: resetService}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]any{
		"success": false,
		"message": message,
	})
}
