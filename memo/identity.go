package memo

import (
	"fmt"
	"reflect"
)

// Identity is the normalized form of one call's arguments and the lookup
// key of a Store. Identities are immutable; two identities denote the same
// call iff their keys are equal.
type Identity struct {
	key  string
	hash uint64

	// refs keeps pointer and channel arguments reachable for as long as the
	// identity is stored, so their addresses cannot be reused by new objects.
	refs []reflect.Value
}

// Key returns the canonical encoding of the call.
func (id Identity) Key() string {
	return id.key
}

// Hash returns the xxhash of Key.
func (id Identity) Hash() uint64 {
	return id.hash
}

// Equal reports whether id and other denote the same call.
func (id Identity) Equal(other Identity) bool {
	return id.key == other.key
}

// IsZero reports whether id was never built.
func (id Identity) IsZero() bool {
	return id.key == ""
}

// String returns a short label for logs: the hash as 16 hex characters.
func (id Identity) String() string {
	return fmt.Sprintf("%016x", id.hash)
}
