package memo

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// CostStoreConfig configures a CostStore.
type CostStoreConfig[V any] struct {
	// MaxCost is the total cost the store may hold. Required.
	MaxCost int64

	// NumCounters is the number of keys tracked for admission frequency.
	// Default: 10 * MaxCost
	NumCounters int64

	// Cost returns the cost of one value.
	// Default: every entry costs 1, making MaxCost an entry count.
	Cost func(V) int64
}

// CostStore is a bounded store with TinyLFU admission and sampled LFU
// eviction. An Insert may be rejected by the admission policy, in which case
// the next call for that Identity is a miss and recomputes. Len is
// approximate.
type CostStore[V any] struct {
	cache *ristretto.Cache[string, entry[V]]
	cost  func(V) int64
}

// NewCostStore creates a cost-bounded store. Close must be called to
// release its background goroutines.
func NewCostStore[V any](cfg CostStoreConfig[V]) (*CostStore[V], error) {
	if cfg.MaxCost <= 0 {
		return nil, fmt.Errorf("%w: max cost %d", ErrInvalidCapacity, cfg.MaxCost)
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 10 * cfg.MaxCost
	}
	if cfg.Cost == nil {
		cfg.Cost = func(V) int64 { return 1 }
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, entry[V]]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("memo: create cost store: %w", err)
	}
	return &CostStore[V]{cache: c, cost: cfg.Cost}, nil
}

// Lookup returns the value stored for id. The full key is compared, so a
// hash conflict inside the cache is reported as a miss.
func (s *CostStore[V]) Lookup(_ context.Context, id Identity) (V, bool) {
	e, ok := s.cache.Get(id.Key())
	if !ok || e.id.Key() != id.Key() {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Insert offers value to the cache and waits until the write is applied.
func (s *CostStore[V]) Insert(_ context.Context, id Identity, value V) {
	s.cache.Set(id.Key(), entry[V]{id: id, value: value}, s.cost(value))
	s.cache.Wait()
}

// Delete removes the entry for id and waits until the removal is applied.
// Idempotent - no effect on miss.
func (s *CostStore[V]) Delete(_ context.Context, id Identity) {
	s.cache.Del(id.Key())
	s.cache.Wait()
}

// Len returns the approximate number of entries. Deletes are reported by
// ristretto as evictions, so they need no separate accounting.
func (s *CostStore[V]) Len() int {
	m := s.cache.Metrics
	n := int64(m.KeysAdded()) - int64(m.KeysEvicted())
	if n < 0 {
		return 0
	}
	return int(n)
}

// Close stops the cache's background goroutines.
func (s *CostStore[V]) Close() {
	s.cache.Close()
}

// Ensure CostStore implements Store
var _ Store[any] = (*CostStore[any])(nil)
