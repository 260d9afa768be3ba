package memo

import "context"

// Store holds memoized results by call Identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. Insert and
// Delete are mutually exclusive for the same Identity.
// - Uniqueness: at most one entry exists per Identity; Insert overwrites.
// - Errors: Lookup never errors; it returns (zero, false) on miss. Insert
// never fails.
type Store[V any] interface {
	// Lookup returns the stored value. It has no effect besides the read,
	// except that bounded stores may update recency.
	Lookup(ctx context.Context, id Identity) (V, bool)

	// Insert stores value under id, replacing any previous entry.
	Insert(ctx context.Context, id Identity, value V)

	// Delete removes the entry for id. Idempotent - no effect on miss.
	Delete(ctx context.Context, id Identity)

	// Len returns the number of entries.
	Len() int
}

// entry keeps the Identity next to the value so referenced arguments stay
// reachable and bounded stores can verify the full key.
type entry[V any] struct {
	id    Identity
	value V
}
