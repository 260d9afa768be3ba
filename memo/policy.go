package memo

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

// DefaultShards is the shard count of a MemoryStore built by New.
const DefaultShards = 16

// RacePolicy decides what happens when concurrent calls miss on the same
// Identity.
type RacePolicy int

const (
	// RaceLastWriteWins lets every concurrent miss run the function. The
	// store converges to the result of the last successful insert.
	RaceLastWriteWins RacePolicy = iota

	// RaceCoalesce runs the function once per in-flight Identity; other
	// callers wait for and share that result.
	RaceCoalesce
)

func (p RacePolicy) String() string {
	switch p {
	case RaceLastWriteWins:
		return "last-write-wins"
	case RaceCoalesce:
		return "coalesce"
	default:
		return fmt.Sprintf("RacePolicy(%d)", int(p))
	}
}

// ParseRacePolicy parses the names produced by RacePolicy.String.
func ParseRacePolicy(s string) (RacePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-write-wins":
		return RaceLastWriteWins, nil
	case "coalesce":
		return RaceCoalesce, nil
	default:
		return 0, fmt.Errorf("memo: unknown race policy %q", s)
	}
}

// Policy configures the store and race behavior of a Memoizer.
type Policy struct {
	// Race selects the concurrent-miss behavior.
	Race RacePolicy

	// Capacity bounds the number of entries. Zero means unbounded; a
	// positive value selects an LRUStore.
	Capacity int

	// Shards is the MemoryStore shard count. Zero means DefaultShards.
	Shards int
}

// DefaultPolicy returns the default policy.
// Race: last-write-wins, Capacity: unbounded, Shards: 16
func DefaultPolicy() Policy {
	return Policy{
		Race:   RaceLastWriteWins,
		Shards: DefaultShards,
	}
}

// Validate checks the policy fields.
func (p Policy) Validate() error {
	if p.Capacity < 0 {
		return ErrInvalidCapacity
	}
	if p.Race != RaceLastWriteWins && p.Race != RaceCoalesce {
		return fmt.Errorf("memo: unknown race policy %d", int(p.Race))
	}
	return nil
}

// Option configures a Memoizer or KeyBuilder.
type Option func(*options)

type options struct {
	policy      Policy
	name        string
	observer    Observer
	projections map[reflect.Type]func(any) any
	defaults    map[string]any
}

func collectOptions(opts []Option) options {
	o := options{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPolicy replaces the whole policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithRacePolicy sets the concurrent-miss behavior.
func WithRacePolicy(p RacePolicy) Option {
	return func(o *options) {
		o.policy.Race = p
	}
}

// WithCapacity bounds the store to n entries with LRU eviction.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.policy.Capacity = n
	}
}

// WithShards sets the MemoryStore shard count.
func WithShards(n int) Option {
	return func(o *options) {
		o.policy.Shards = n
	}
}

// WithName labels the Memoizer in emitted events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver receives an Event for every lookup, store and failure.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithProjection registers fn as the key projection for values of type T.
// The projected value must itself be hashable. When T is an interface type,
// fn applies to every argument whose dynamic type implements T; a projection
// registered for the exact dynamic type takes precedence.
func WithProjection[T any](fn func(T) any) Option {
	t := reflect.TypeFor[T]()
	return func(o *options) {
		if o.projections == nil {
			o.projections = make(map[reflect.Type]func(any) any)
		}
		o.projections[t] = func(v any) any {
			return fn(v.(T))
		}
	}
}

// WithNamedDefaults makes omitted named arguments key as if the default had
// been passed explicitly, so f(x) and f(x, k=default) share an entry. The
// wrapped function still receives the arguments as supplied.
func WithNamedDefaults(defaults map[string]any) Option {
	d := maps.Clone(defaults)
	return func(o *options) {
		o.defaults = d
	}
}
