package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemorySlotCache is the in-process fallback used when Redis is unreachable.
type MemorySlotCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	slots     []int
	expiresAt time.Time
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemorySlotCache) GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[slotKey(eventTypeID, date)]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.slots, true, nil
}

func (m *MemorySlotCache) SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error {
	m.mu.Lock()
	m.entries[slotKey(eventTypeID, date)] = memoryEntry{
		slots:     slots,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemorySlotCache) InvalidateDate(ctx context.Context, date string) error {
	suffix := ":" + date
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasSuffix(key, suffix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemorySlotCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
