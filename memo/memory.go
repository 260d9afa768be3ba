package memo

import (
	"context"
	"math/bits"
	"sync"
)

// MemoryStore is an unbounded in-memory store. Entries live until they are
// deleted or purged.
type MemoryStore[V any] struct {
	shards []memoryShard[V]
	mask   uint64
}

type memoryShard[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

// NewMemoryStore creates a store with the given shard count, rounded up to
// a power of two. A non-positive count means DefaultShards.
func NewMemoryStore[V any](shards int) *MemoryStore[V] {
	if shards <= 0 {
		shards = DefaultShards
	}
	n := 1 << bits.Len(uint(shards-1))
	s := &MemoryStore[V]{
		shards: make([]memoryShard[V], n),
		mask:   uint64(n - 1),
	}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]entry[V])
	}
	return s
}

func (s *MemoryStore[V]) shard(id Identity) *memoryShard[V] {
	return &s.shards[id.Hash()&s.mask]
}

// Lookup returns the value stored for id. Returns (zero, false) on miss.
func (s *MemoryStore[V]) Lookup(_ context.Context, id Identity) (V, bool) {
	sh := s.shard(id)
	sh.mu.RLock()
	e, ok := sh.entries[id.Key()]
	sh.mu.RUnlock()
	return e.value, ok
}

// Insert stores value under id, replacing any previous entry.
func (s *MemoryStore[V]) Insert(_ context.Context, id Identity, value V) {
	sh := s.shard(id)
	sh.mu.Lock()
	sh.entries[id.Key()] = entry[V]{id: id, value: value}
	sh.mu.Unlock()
}

// Delete removes the entry for id. Idempotent - no effect on miss.
func (s *MemoryStore[V]) Delete(_ context.Context, id Identity) {
	sh := s.shard(id)
	sh.mu.Lock()
	delete(sh.entries, id.Key())
	sh.mu.Unlock()
}

// Len returns the number of entries across all shards.
func (s *MemoryStore[V]) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// Purge removes every entry.
func (s *MemoryStore[V]) Purge() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		clear(sh.entries)
		sh.mu.Unlock()
	}
}

// Ensure MemoryStore implements Store
var _ Store[any] = (*MemoryStore[any])(nil)
