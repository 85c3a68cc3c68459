// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package identity abstracts the external identity provider that owns
// account credentials. The reset flow consults and mutates it but never
// stores credentials itself.
package identity

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when no account exists for an email.
var ErrAccountNotFound = errors.New("account not found")

// Account is a reference to a provider-side account.
type Account struct {
	UID   string
	Email string
}

// Provider is the identity provider contract. Implementations exist for a
// privileged service account credential and for the public account
// management API with an application key; callers are indifferent to which.
type Provider interface {
	LookupByEmail(ctx context.Context, email string) (*Account, error)
	SetPassword(ctx context.Context, account *Account, password string) error
}
