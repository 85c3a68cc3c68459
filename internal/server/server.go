// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"github.com/wordzy/admin-api/internal/config"
	"github.com/wordzy/admin-api/internal/database"
	"github.com/wordzy/admin-api/internal/handlers"
	"github.com/wordzy/admin-api/internal/identity"
	"github.com/wordzy/admin-api/internal/mailer"
	"github.com/wordzy/admin-api/internal/services/reset"
	"github.com/wordzy/admin-api/internal/store"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"store", cfg.Store.Backend,
		"firebase_mode", cfg.Firebase.Mode,
		"mail_backend", cfg.Mail.Backend,
	)

	// Reset record store
	st, cleanup, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer cleanup()

	// Identity provider
	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up identity provider: %w", err)
	}

	// Mail sender
	sender, err := buildSender(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up mail sender: %w", err)
	}

	resetService := reset.NewService(provider, st, sender, &cfg.Reset)

	// Background expiry sweep
	sweeper := store.NewSweeper(st, cfg.Reset.SweepInterval)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}
	defer sweeper.Stop()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, cfg, resetService)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, cfg *config.Config, resetService *reset.Service) {
	h := handlers.New(resetService)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/forgot-password", h.ForgotPassword, resetRateLimiter(cfg))
	api.GET("/verify-token/:token", h.VerifyToken)
	api.POST("/password-changed", h.PasswordChanged)
}

// buildStore selects the record store backend. The cleanup func closes
// whatever the backend holds open.
func buildStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "sqlite":
		db, err := database.Open(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
		return store.NewSQLite(db), cleanup, nil

	case "memory", "":
		return store.NewMemory(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func buildProvider(ctx context.Context, cfg *config.Config) (identity.Provider, error) {
	switch cfg.Firebase.Mode {
	case "admin", "":
		return identity.NewFirebaseAuth(ctx, &cfg.Firebase)
	case "apikey":
		return identity.NewToolkit(cfg.Firebase.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown firebase mode: %s", cfg.Firebase.Mode)
	}
}

func buildSender(cfg *config.Config) (mailer.Sender, error) {
	switch cfg.Mail.Backend {
	case "smtp", "":
		return mailer.NewSMTP(&cfg.SMTP, &cfg.Mail)
	case "mailchannels":
		return mailer.NewMailChannels(&cfg.Mail), nil
	default:
		return nil, fmt.Errorf("unknown mail backend: %s", cfg.Mail.Backend)
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// HTTP-01 challenges and HTTP→HTTPS redirect on :80
		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP→HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
