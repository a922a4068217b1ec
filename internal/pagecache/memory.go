package pagecache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/metrics"
)

const defaultCapacity = 500

type entry struct {
	html      string
	createdAt time.Time
}

// MemoryOptions configure the in-process cache.
type MemoryOptions struct {
	TTL      time.Duration
	Capacity int
	Metrics  *metrics.PageCacheMetrics
	Clock    func() time.Time
}

// Memory is a bounded, mutex-guarded page cache. Expired pages are removed
// when read and by Sweep; the oldest page is dropped when capacity is reached.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	metrics  *metrics.PageCacheMetrics
	clock    func() time.Time
}

// NewMemory builds an in-memory cache.
func NewMemory(opts MemoryOptions) *Memory {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Memory{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		metrics:  opts.Metrics,
		clock:    clock,
	}
}

func (m *Memory) Get(ctx context.Context, viewID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[viewID]
	if !ok {
		m.metrics.IncMiss()
		return "", ErrNotFound
	}
	if m.expired(e, m.clock()) {
		delete(m.entries, viewID)
		m.metrics.AddEvictions(metrics.EvictionExpired, 1)
		m.metrics.SetEntries(len(m.entries))
		m.metrics.IncMiss()
		return "", ErrNotFound
	}
	m.metrics.IncHit()
	return e.html, nil
}

func (m *Memory) Set(ctx context.Context, viewID, html string) error {
	if viewID == "" {
		return errors.New("view id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[viewID]; !exists && len(m.entries) >= m.capacity {
		m.evictOldest()
	}
	m.entries[viewID] = entry{html: html, createdAt: m.clock()}
	m.metrics.SetEntries(len(m.entries))
	return nil
}

func (m *Memory) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	removed := 0
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
			removed++
		}
	}
	m.metrics.AddEvictions(metrics.EvictionExpired, removed)
	m.metrics.SetEntries(len(m.entries))
	return removed, nil
}

// Len reports the number of held pages, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return now.Sub(e.createdAt) > m.ttl
}

// evictOldest expects m.mu to be held.
func (m *Memory) evictOldest() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, e := range m.entries {
		if oldestID == "" || e.createdAt.Before(oldestAt) {
			oldestID, oldestAt = id, e.createdAt
		}
	}
	if oldestID == "" {
		return
	}
	delete(m.entries, oldestID)
	m.metrics.AddEvictions(metrics.EvictionCapacity, 1)
}
