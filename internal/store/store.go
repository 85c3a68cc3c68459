// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package store holds short-lived reset records keyed by opaque token.
//
// Two backends implement the same contract: an in-process map (single
// instance only, lost on restart) and a SQLite database (durable across
// restarts). The coordinator depends only on this interface.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/wordzy/admin-api/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for a token.
	ErrNotFound = errors.New("reset record not found")

	// ErrExpired is returned when a record exists but is past its expiry.
	// The backend deletes the record on the way out, so a later Get for
	// the same token reports ErrNotFound.
	ErrExpired = errors.New("reset record expired")
)

// Store is the reset record store contract.
//
// Put fixes the record's expiry at now+ttl. Get never returns an expired
// record: present-but-expired behaves like absent apart from the error
// value, which lets the HTTP layer distinguish 404 from 410. Records are
// immutable after Put; redemption reads do not consume them.
type Store interface {
	Put(ctx context.Context, rec *models.ResetRecord, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.ResetRecord, error)
	Delete(ctx context.Context, token string) error

	// Sweep removes all expired records and returns how many were removed.
	// It must not block concurrent single-key operations for its whole
	// duration.
	Sweep(ctx context.Context) (int, error)
}
