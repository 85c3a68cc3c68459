// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/wordzy/admin-api/internal/config"
	"google.golang.org/api/option"
)

// FirebaseAuth is the privileged Provider binding. It talks to Firebase
// Authentication through the Admin SDK with a service account credential.
type FirebaseAuth struct {
	client *fbauth.Client
}

// NewFirebaseAuth initializes the Admin SDK from the configured service
// account file.
func NewFirebaseAuth(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseAuth, error) {
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth client: %w", err)
	}

	return &FirebaseAuth{client: client}, nil
}

// LookupByEmail resolves an account by email address.
func (f *FirebaseAuth) LookupByEmail(ctx context.Context, email string) (*Account, error) {
	user, err := f.client.GetUserByEmail(ctx, email)
	if fbauth.IsUserNotFound(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return &Account{UID: user.UID, Email: user.Email}, nil
}

// SetPassword overwrites the account's password.
func (f *FirebaseAuth) SetPassword(ctx context.Context, account *Account, password string) error {
	params := (&fbauth.UserToUpdate{}).Password(password)
	if _, err := f.client.UpdateUser(ctx, account.UID, params); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
