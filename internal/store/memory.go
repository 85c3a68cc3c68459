// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package store

import (
	"context"
	"sync"
	"time"

	"github.com/wordzy/admin-api/internal/models"
)

// Memory is a process-local Store. Suitable for a single-instance
// deployment only: records are lost on restart and not shared across
// instances.
type Memory struct {
	mu   sync.RWMutex
	data map[string]models.ResetRecord
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]models.ResetRecord)}
}

// Put stores the record with expiry fixed at now+ttl.
func (m *Memory) Put(_ context.Context, rec *models.ResetRecord, ttl time.Duration) error {
	now := time.Now()

	stored := *rec
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(ttl)

	m.mu.Lock()
	m.data[stored.Token] = stored
	m.mu.Unlock()

	rec.CreatedAt = stored.CreatedAt
	rec.ExpiresAt = stored.ExpiresAt
	return nil
}

// Get returns the record for token. Expired records are deleted lazily and
// reported as ErrExpired.
func (m *Memory) Get(_ context.Context, token string) (*models.ResetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.data[token]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Expired(time.Now()) {
		delete(m.data, token)
		return nil, ErrExpired
	}

	out := rec
	return &out, nil
}

// Delete removes the record for token. Deleting an absent token is a no-op.
func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.data, token)
	m.mu.Unlock()
	return nil
}

// Sweep removes all expired records. It collects candidates under a read
// lock and deletes them in a second pass, re-checking expiry, so single-key
// operations are never blocked for the whole sweep.
func (m *Memory) Sweep(_ context.Context) (int, error) {
	now := time.Now()

	m.mu.RLock()
	expired := make([]string, 0)
	for token, rec := range m.data {
		if rec.Expired(now) {
			expired = append(expired, token)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, token := range expired {
		m.mu.Lock()
		if rec, ok := m.data[token]; ok && rec.Expired(now) {
			delete(m.data, token)
			removed++
		}
		m.mu.Unlock()
	}

	return removed, nil
}

// Len reports the number of records currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
