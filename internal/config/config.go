// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	TLS      TLSConfig
	Reset    ResetConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	SMTP     SMTPConfig
	Mail     MailConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type TLSConfig struct {
	Mode     string // auto, acme, manual, off
	CertDir  string // Directory for ACME certificate cache
	Email    string // ACME email for Let's Encrypt
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

// ResetConfig controls the credential-reset flow.
type ResetConfig struct { //nolint:govet // fieldalignment not critical for config structs
	FrontendURL    string        // Base URL the redemption link points at
	TokenTTL       time.Duration // Validity window of a reset record
	PasswordLength int           // Length of generated temporary passwords
	SweepInterval  time.Duration // How often expired records are evicted
	CallTimeout    time.Duration // Per-call deadline for provider and mail calls
	RatePerMinute  int           // Issue requests allowed per client IP per minute
}

type StoreConfig struct {
	Backend string // memory, sqlite
	DSN     string // SQLite path (sqlite backend only)
}

// FirebaseConfig selects the identity provider binding.
// Mode "admin" uses a service account credential, "apikey" the public
// Identity Toolkit REST API.
type FirebaseConfig struct {
	Mode            string
	ProjectID       string
	CredentialsFile string // Service account JSON (admin mode)
	APIKey          string // Web API key (apikey mode)
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

type MailConfig struct {
	Backend  string // smtp, mailchannels
	From     string
	FromName string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		Reset: ResetConfig{
			FrontendURL:    cmd.String("frontend-url"),
			TokenTTL:       cmd.Duration("reset-token-ttl"),
			PasswordLength: int(cmd.Int("reset-password-length")),
			SweepInterval:  cmd.Duration("reset-sweep-interval"),
			CallTimeout:    cmd.Duration("reset-call-timeout"),
			RatePerMinute:  int(cmd.Int("reset-rate-per-minute")),
		},
		Store: StoreConfig{
			Backend: cmd.String("store-backend"),
			DSN:     cmd.String("store-dsn"),
		},
		Firebase: FirebaseConfig{
			Mode:            cmd.String("firebase-mode"),
			ProjectID:       cmd.String("firebase-project-id"),
			CredentialsFile: cmd.String("firebase-credentials-file"),
			APIKey:          cmd.String("firebase-api-key"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Mail: MailConfig{
			Backend:  cmd.String("mail-backend"),
			From:     cmd.String("mail-from"),
			FromName: cmd.String("mail-from-name"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	if cfg.Reset.FrontendURL == "" {
		cfg.Reset.FrontendURL = cfg.Server.BaseURL
	}

	return cfg
}

// Validate checks that backend selections and their required settings are
// consistent before any component is wired.
func (cfg *Config) Validate() error {
	switch cfg.Store.Backend {
	case "memory":
	case "sqlite":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("sqlite store requires store.dsn")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	switch cfg.Firebase.Mode {
	case "admin":
		if cfg.Firebase.CredentialsFile == "" {
			return fmt.Errorf("firebase admin mode requires firebase.credentials_file")
		}
	case "apikey":
		if cfg.Firebase.APIKey == "" {
			return fmt.Errorf("firebase apikey mode requires firebase.api_key")
		}
	default:
		return fmt.Errorf("unknown firebase mode: %s", cfg.Firebase.Mode)
	}

	switch cfg.Mail.Backend {
	case "smtp":
		if cfg.SMTP.Host == "" {
			return fmt.Errorf("smtp mail backend requires smtp.host")
		}
	case "mailchannels":
	default:
		return fmt.Errorf("unknown mail backend: %s", cfg.Mail.Backend)
	}

	if cfg.Mail.From == "" {
		return fmt.Errorf("mail.from is required")
	}
	if cfg.Reset.TokenTTL <= 0 {
		return fmt.Errorf("reset.token_ttl must be positive")
	}

	return nil
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := strings.ToLower(cfg.TLS.Mode)

	useTLS := shouldUseTLS(mode, host)

	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	// ACME mode always uses port 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode, host string) bool {
	switch mode {
	case "off":
		return false
	case "acme", "manual":
		return true
	default: // "auto" or empty
		return !IsLocalhost(host)
	}
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   5000,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the service",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, acme, manual, off)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_MODE"), toml.TOML("tls.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for the ACME certificate cache",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_DIR"), toml.TOML("tls.cert_dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for ACME/Let's Encrypt registration",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_EMAIL"), toml.TOML("tls.email", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// Reset flow flags
		&cli.StringFlag{
			Name:    "frontend-url",
			Usage:   "Frontend URL the reset link points at (defaults to base URL)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FRONTEND_URL"), toml.TOML("reset.frontend_url", configFile)),
		},
		&cli.DurationFlag{
			Name:    "reset-token-ttl",
			Value:   time.Hour,
			Usage:   "Validity window of a reset token",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_TOKEN_TTL"), toml.TOML("reset.token_ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "reset-password-length",
			Value:   12,
			Usage:   "Length of generated temporary passwords",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_PASSWORD_LENGTH"), toml.TOML("reset.password_length", configFile)),
		},
		&cli.DurationFlag{
			Name:    "reset-sweep-interval",
			Value:   time.Hour,
			Usage:   "Interval between expired-record sweeps",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_SWEEP_INTERVAL"), toml.TOML("reset.sweep_interval", configFile)),
		},
		&cli.DurationFlag{
			Name:    "reset-call-timeout",
			Value:   10 * time.Second,
			Usage:   "Deadline for identity provider and mail calls",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_CALL_TIMEOUT"), toml.TOML("reset.call_timeout", configFile)),
		},
		&cli.IntFlag{
			Name:    "reset-rate-per-minute",
			Value:   10,
			Usage:   "Forgot-password requests allowed per client IP per minute",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_RATE_PER_MINUTE"), toml.TOML("reset.rate_per_minute", configFile)),
		},
		// Store flags
		&cli.StringFlag{
			Name:    "store-backend",
			Value:   "memory",
			Usage:   "Reset record store backend (memory, sqlite)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORE_BACKEND"), toml.TOML("store.backend", configFile)),
		},
		&cli.StringFlag{
			Name:    "store-dsn",
			Value:   "./data/reset.db",
			Usage:   "SQLite database path (sqlite backend)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORE_DSN"), toml.TOML("store.dsn", configFile)),
		},
		// Firebase flags
		&cli.StringFlag{
			Name:    "firebase-mode",
			Value:   "admin",
			Usage:   "Identity provider binding (admin, apikey)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FIREBASE_MODE"), toml.TOML("firebase.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "firebase-project-id",
			Usage:   "Firebase project ID",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FIREBASE_PROJECT_ID"), toml.TOML("firebase.project_id", configFile)),
		},
		&cli.StringFlag{
			Name:    "firebase-credentials-file",
			Usage:   "Service account credentials JSON (admin mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FIREBASE_CREDENTIALS_FILE"), toml.TOML("firebase.credentials_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "firebase-api-key",
			Usage:   "Web API key for the Identity Toolkit REST API (apikey mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FIREBASE_API_KEY"), toml.TOML("firebase.api_key", configFile)),
		},
		// Mail flags
		&cli.StringFlag{
			Name:    "mail-backend",
			Value:   "smtp",
			Usage:   "Mail delivery backend (smtp, mailchannels)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_BACKEND"), toml.TOML("mail.backend", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Value:   "noreply@wordzy.app",
			Usage:   "Sender address for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM"), toml.TOML("mail.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Value:   "Wordzy Admin",
			Usage:   "Sender display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USER"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASS"), toml.TOML("smtp.password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP delivery",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
	}
}
