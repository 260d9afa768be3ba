package memo

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// LRUStore is a bounded store that evicts the least recently used entry once
// capacity is reached. Lookups update recency, so they serialize on the
// store's lock.
type LRUStore[V any] struct {
	cache *lru.Cache
}

// NewLRUStore creates a store holding at most capacity entries.
func NewLRUStore[V any](capacity int) (*LRUStore[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	c, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("memo: create lru store: %w", err)
	}
	return &LRUStore[V]{cache: c}, nil
}

// Lookup returns the value stored for id and marks it recently used.
func (s *LRUStore[V]) Lookup(_ context.Context, id Identity) (V, bool) {
	v, ok := s.cache.Get(id.Key())
	if !ok {
		var zero V
		return zero, false
	}
	return v.(entry[V]).value, true
}

// Insert stores value under id, evicting the oldest entry when full.
func (s *LRUStore[V]) Insert(_ context.Context, id Identity, value V) {
	s.cache.Add(id.Key(), entry[V]{id: id, value: value})
}

// Delete removes the entry for id. Idempotent - no effect on miss.
func (s *LRUStore[V]) Delete(_ context.Context, id Identity) {
	s.cache.Remove(id.Key())
}

// Len returns the number of entries.
func (s *LRUStore[V]) Len() int {
	return s.cache.Len()
}

// Purge removes every entry.
func (s *LRUStore[V]) Purge() {
	s.cache.Purge()
}

// Ensure LRUStore implements Store
var _ Store[any] = (*LRUStore[any])(nil)
