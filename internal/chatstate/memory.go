package chatstate

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// MemoryStore keeps state in a bounded in-process cache. Entries expire
// after the TTL and the least valuable ones are evicted beyond capacity.
type MemoryStore struct {
	cache otter.Cache[int64, State]
}

func NewMemoryStore(capacity int, ttl time.Duration) (*MemoryStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c, err := otter.MustBuilder[int64, State](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache with capacity %d: %w", capacity, err)
	}
	return &MemoryStore{cache: c}, nil
}

func (m *MemoryStore) Get(ctx context.Context, userID int64) (*State, error) {
	state, ok := m.cache.Get(userID)
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *MemoryStore) Set(ctx context.Context, userID int64, state State) error {
	if state.Search != nil {
		search := *state.Search
		state.Search = &search
	}
	if !m.cache.Set(userID, state) {
		return fmt.Errorf("session cache rejected user %d", userID)
	}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, userID int64) error {
	m.cache.Delete(userID)
	return nil
}

func (m *MemoryStore) Backend() string {
	return "memory"
}

// Len is the number of live entries.
func (m *MemoryStore) Len() int {
	return m.cache.Size()
}

func (m *MemoryStore) Close() {
	m.cache.Close()
}
