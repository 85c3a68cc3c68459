// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordzy/admin-api/internal/database"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
}

func TestOpen_RunsMigrations(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.GetContext(context.Background(), &name,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'reset_records'`)
	require.NoError(t, err)
	assert.Equal(t, "reset_records", name)
}

func TestOpen_FileDatabase(t *testing.T) {
	dsn := t.TempDir() + "/reset.db"

	db, err := database.Open(dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(context.Background(),
		`INSERT INTO reset_records (token, email, temp_password, expires_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		"tok", "user@example.com", "pw")
	assert.NoError(t, err)
}
