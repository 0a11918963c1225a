package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
)

type memorySnapshot struct {
	snapshot  *entities.MarketSnapshot
	expiresAt time.Time
}

// MemorySnapshotStore is the single-instance snapshot store used when no
// Redis URL is configured. Entries expire after ttl (0 keeps them forever).
type MemorySnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]memorySnapshot
	ttl     time.Duration
	now     func() time.Time
}

var _ repositories.SnapshotRepository = (*MemorySnapshotStore)(nil)

func NewMemorySnapshotStore(ttl time.Duration) *MemorySnapshotStore {
	return &MemorySnapshotStore{
		entries: make(map[string]memorySnapshot),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemorySnapshotStore) Save(_ context.Context, viewer string, snapshot *entities.MarketSnapshot) error {
	entry := memorySnapshot{snapshot: snapshot}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[viewer] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemorySnapshotStore) Load(_ context.Context, viewer string) (*entities.MarketSnapshot, error) {
	m.mu.RLock()
	entry, ok := m.entries[viewer]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, viewer)
		m.mu.Unlock()
		return nil, nil
	}
	return entry.snapshot, nil
}

func (m *MemorySnapshotStore) Delete(_ context.Context, viewer string) error {
	m.mu.Lock()
	delete(m.entries, viewer)
	m.mu.Unlock()
	return nil
}
