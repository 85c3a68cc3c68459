// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vinovest/sqlx"
	"github.com/wordzy/admin-api/internal/models"
)

// SQLite is a durable Store backed by the reset_records table. Records
// survive restarts and can be shared by multiple instances pointing at the
// same database file.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite creates a store on top of an already opened and migrated
// database connection.
func NewSQLite(db *sqlx.DB) *SQLite {
	return &SQLite{db: db}
}

// Put stores the record with expiry fixed at now+ttl.
func (s *SQLite) Put(ctx context.Context, rec *models.ResetRecord, ttl time.Duration) error {
	now := time.Now()
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(ttl)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reset_records (token, email, temp_password, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Token, rec.Email, rec.TempPassword, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting reset record: %w", err)
	}
	return nil
}

// Get returns the record for token. Expired rows are deleted on the way
// out and reported as ErrExpired.
func (s *SQLite) Get(ctx context.Context, token string) (*models.ResetRecord, error) {
	var rec models.ResetRecord
	err := s.db.GetContext(ctx, &rec,
		`SELECT token, email, temp_password, expires_at, created_at FROM reset_records WHERE token = ?`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting reset record: %w", err)
	}

	if rec.Expired(time.Now()) {
		// Best effort, the sweep catches anything missed here.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM reset_records WHERE token = ?`, token)
		return nil, ErrExpired
	}

	return &rec, nil
}

// Delete removes the record for token. Deleting an absent token is a no-op.
func (s *SQLite) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reset_records WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting reset record: %w", err)
	}
	return nil
}

// Sweep removes all expired records in a single statement.
func (s *SQLite) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reset_records WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("sweeping reset records: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading sweep row count: %w", err)
	}
	return int(removed), nil
}
