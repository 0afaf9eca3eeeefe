package storage

import (
	"context"
	"sync"
	"time"

	"workflowx/src/model"
)

type memoryEntry struct {
	dialogCtx map[string]any
	updatedAt time.Time
}

// MemoryDialogStore is an in-memory DialogStore for development and tests
type MemoryDialogStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryDialogStore(cfg model.DialogConfig) *MemoryDialogStore {
	return &MemoryDialogStore{
		entries: make(map[string]memoryEntry),
		ttl:     cfg.TTL,
		now:     time.Now,
	}
}

// Load returns the context and refreshes its expiry
func (m *MemoryDialogStore) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[sessionID]
	if !exists {
		return nil, nil
	}

	// Check if entry has expired
	now := m.now()
	if m.ttl > 0 && now.Sub(entry.updatedAt) > m.ttl {
		delete(m.entries, sessionID)
		return nil, nil
	}

	entry.updatedAt = now
	m.entries[sessionID] = entry
	return entry.dialogCtx, nil
}

func (m *MemoryDialogStore) Save(ctx context.Context, sessionID string, dialogCtx map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dialogCtx == nil {
		delete(m.entries, sessionID)
		return nil
	}
	m.entries[sessionID] = memoryEntry{dialogCtx: dialogCtx, updatedAt: m.now()}
	return nil
}

func (m *MemoryDialogStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionID)
	return nil
}
