// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryTokenStore keeps bearer tokens in process memory. It stands in
// for a client-side store during development and in tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens []uuid.UUID
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Save(_ context.Context, token uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	return nil
}

// Latest returns the most recently saved token, or uuid.Nil.
func (m *MemoryTokenStore) Latest() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return uuid.Nil
	}
	return m.tokens[len(m.tokens)-1]
}
