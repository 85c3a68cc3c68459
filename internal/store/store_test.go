// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordzy/admin-api/internal/models"
	"github.com/wordzy/admin-api/internal/store"
	"github.com/wordzy/admin-api/internal/testutil"
)

// backends returns a fresh instance of every Store implementation so the
// contract tests run against both.
func backends(t *testing.T) map[string]store.Store {
	t.Helper()

	return map[string]store.Store{
		"memory": store.NewMemory(),
		"sqlite": store.NewSQLite(testutil.NewTestDB(t)),
	}
}

func newRecord(token string) *models.ResetRecord {
	return testutil.NewResetRecord(token)
}

func TestPutGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := newRecord("tok-put-get")

			before := time.Now()
			require.NoError(t, s.Put(ctx, rec, time.Hour))

			// Put fixes the expiry on the record itself.
			assert.WithinDuration(t, before.Add(time.Hour), rec.ExpiresAt, 2*time.Second)

			got, err := s.Get(ctx, "tok-put-get")
			require.NoError(t, err)
			assert.Equal(t, "user@example.com", got.Email)
			assert.Equal(t, "Temp!Pass2345", got.TempPassword)
			assert.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, time.Second)
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "never-issued")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestGet_ExpiredIsLazilyEvicted(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, newRecord("tok-expired"), -time.Minute))

			_, err := s.Get(ctx, "tok-expired")
			assert.ErrorIs(t, err, store.ErrExpired)

			// The expired row is gone after the first read.
			_, err = s.Get(ctx, "tok-expired")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestGet_DoesNotConsume(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, newRecord("tok-reread"), time.Hour))

			for i := 0; i < 3; i++ {
				got, err := s.Get(ctx, "tok-reread")
				require.NoError(t, err)
				assert.Equal(t, "user@example.com", got.Email)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, newRecord("tok-delete"), time.Hour))

			require.NoError(t, s.Delete(ctx, "tok-delete"))

			_, err := s.Get(ctx, "tok-delete")
			assert.ErrorIs(t, err, store.ErrNotFound)

			// Deleting again is a no-op.
			assert.NoError(t, s.Delete(ctx, "tok-delete"))
		})
	}
}

func TestSweep(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, newRecord("tok-live"), time.Hour))
			require.NoError(t, s.Put(ctx, newRecord("tok-dead-1"), -time.Minute))
			require.NoError(t, s.Put(ctx, newRecord("tok-dead-2"), -time.Hour))

			removed, err := s.Sweep(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			_, err = s.Get(ctx, "tok-live")
			assert.NoError(t, err)
			_, err = s.Get(ctx, "tok-dead-1")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestSweep_Empty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			removed, err := s.Sweep(context.Background())
			require.NoError(t, err)
			assert.Zero(t, removed)
		})
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				token := fmt.Sprintf("tok-%d-%d", i, j)
				_ = s.Put(ctx, newRecord(token), time.Hour)
				_, _ = s.Get(ctx, token)
				_, _ = s.Sweep(ctx)
				_ = s.Delete(ctx, token)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Zero(t, s.Len())
}

func TestSweeper_RunsPeriodically(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, newRecord("tok-sweeper"), -time.Minute))

	sw := store.NewSweeper(s, 50*time.Millisecond)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	assert.Eventually(t, func() bool {
		return s.Len() == 0
	}, 2*time.Second, 20*time.Millisecond)
}
