package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is an in-process TTL key/value store with the same semantics
// as RedisStore. Intended for tests and single-node development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ticker  *time.Ticker
	done    chan struct{}
}

// NewMemoryStore creates an in-memory store. When cleanupInterval is
// positive a background janitor removes expired entries; expired entries
// are invisible to Get either way.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		return "", false, nil
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}

	return entry.value, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine if one was started.
func (m *MemoryStore) Close() {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, entry := range m.entries {
				if entry.expired(now) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}
