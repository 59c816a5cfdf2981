// Package cache provides the user-data snapshot cache tiers sitting in front
// of the persistence layer: a process-local TTL map and an optional remote
// Redis tier. Both tiers hold the JSON-encoded attribute blob keyed by user
// id and treat it as opaque.
//
// Failure semantics: a cache tier is never allowed to fail an operation.
// Errors are swallowed and logged, misses are reported as absence, and the
// caller falls through to the next tier.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the contract shared by every cache tier.
type Store interface {
	// Get returns the cached snapshot for userID, or ok=false on a miss.
	Get(ctx context.Context, userID string) (data []byte, ok bool)
	// Put stores the snapshot for userID under the tier's TTL.
	Put(ctx context.Context, userID string, data []byte)
	// Invalidate drops any cached snapshot for userID.
	Invalidate(ctx context.Context, userID string)
}

// entry is a cached snapshot plus its expiry instant.
type entry struct {
	data     []byte
	expireAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped lazily on
// lookup and opportunistically swept once enough lookups have accumulated,
// keeping memory bounded without a background goroutine.
//
// Safe for concurrent use.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	sweepN  uint64
}

// sweepThreshold is the number of lookups between opportunistic sweeps.
const sweepThreshold = 5000

// NewMemory constructs a Memory cache with the given TTL.
// A non-positive TTL is coerced to one minute.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get implements Store. A stale entry counts as a miss and is evicted.
func (m *Memory) Get(_ context.Context, userID string) ([]byte, bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepN++
	if m.sweepN >= sweepThreshold {
		for k, e := range m.entries {
			if !now.Before(e.expireAt) {
				delete(m.entries, k)
			}
		}
		m.sweepN = 0
	}

	e, ok := m.entries[userID]
	if !ok {
		return nil, false
	}
	if !now.Before(e.expireAt) {
		delete(m.entries, userID)
		return nil, false
	}
	return e.data, true
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, userID string, data []byte) {
	m.mu.Lock()
	m.entries[userID] = entry{data: data, expireAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
}

// Invalidate implements Store.
func (m *Memory) Invalidate(_ context.Context, userID string) {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
}
