// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ResetRecord bridges "temporary password issued" to "user followed the
// link". The token is the lookup key and only ever travels inside the
// one-time redemption link.
type ResetRecord struct { //nolint:govet // fieldalignment: readability over optimization
	Token        string    `db:"token" json:"-"`
	Email        string    `db:"email" json:"email"`
	TempPassword string    `db:"temp_password" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the record is past its validity window at now.
func (r *ResetRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
