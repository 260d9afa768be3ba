// Package memo provides memoizing wrappers for arbitrary functions.
//
// A Memoizer intercepts calls to a function, builds an Identity from the
// call's positional and named arguments, and returns a previously computed
// result when a call with an equal Identity has already succeeded.
//
// # Components
//
//   - KeyBuilder turns Args into an Identity. Positional order and arity are
//     significant; named arguments are compared as an unordered set.
//   - Store holds results by Identity. MemoryStore is the unbounded default;
//     LRUStore and CostStore are bounded variants.
//   - Memoizer is the call interceptor. Wrap0 to Wrap3 return typed
//     functions with the same signature as the function they wrap.
//
// # Keys
//
// Scalars, strings, pointers, channels, and arrays or structs made of them
// are usable as key components. Pointers and channels compare by reference.
// Maps are projected onto the set of their entries. Slices, funcs and any
// other type without a stable identity are rejected with a
// *KeyConstructionError unless a projection is supplied, either by
// implementing Projector or with WithProjection.
//
// Calls that differ only in explicit versus defaulted arguments are distinct
// unless WithNamedDefaults is used.
//
// # Precondition
//
// Memoization assumes the caller accepts that a result reflects the first
// successful call with its Identity. Impure functions (time, I/O, random
// input) are memoized as if they were pure.
//
// # Errors
//
// Errors returned by the wrapped function are passed through unchanged and
// are never cached. A cancelled call never stores a result.
//
// # Concurrency
//
// A Memoizer is safe for concurrent use. Under RaceLastWriteWins (the
// default) concurrent misses for the same Identity may each run the function;
// under RaceCoalesce they share one in-flight call.
package memo
