package memo

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Func is the shape of a function a Memoizer wraps.
type Func[R any] func(ctx context.Context, args Args) (R, error)

// Memoizer wraps a Func with memoization. Each Memoizer owns its store.
//
// Contract:
//   - Concurrency: Call is safe for concurrent use.
//   - Context: ctx is passed to the function; a call whose ctx is done when
//     the function returns does not store its result.
//   - Errors: key construction failures are returned as *KeyConstructionError
//     without calling the function; function errors are returned unchanged
//     and never cached.
type Memoizer[R any] struct {
	id       string
	name     string
	fn       Func[R]
	keys     *KeyBuilder
	store    Store[R]
	race     RacePolicy
	observer Observer
	flights  singleflight.Group
}

// New wraps fn with a store chosen by the policy: a MemoryStore, or an
// LRUStore when a capacity is set.
func New[R any](fn Func[R], opts ...Option) (*Memoizer[R], error) {
	o := collectOptions(opts)
	if err := o.policy.Validate(); err != nil {
		return nil, err
	}

	var store Store[R]
	if o.policy.Capacity > 0 {
		lru, err := NewLRUStore[R](o.policy.Capacity)
		if err != nil {
			return nil, err
		}
		store = lru
	} else {
		store = NewMemoryStore[R](o.policy.Shards)
	}
	return newMemoizer(fn, store, o)
}

// NewWithStore wraps fn with the given store. Capacity and Shards in the
// policy are ignored.
func NewWithStore[R any](fn Func[R], store Store[R], opts ...Option) (*Memoizer[R], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := collectOptions(opts)
	if err := o.policy.Validate(); err != nil {
		return nil, err
	}
	return newMemoizer(fn, store, o)
}

func newMemoizer[R any](fn Func[R], store Store[R], o options) (*Memoizer[R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return &Memoizer[R]{
		id:       uuid.NewString(),
		name:     o.name,
		fn:       fn,
		keys:     newKeyBuilder(o),
		store:    store,
		race:     o.policy.Race,
		observer: o.observer,
	}, nil
}

// Call returns the stored result for args, or runs the function and stores
// its result on success.
func (m *Memoizer[R]) Call(ctx context.Context, args Args) (R, error) {
	var zero R

	id, err := m.keys.Build(args)
	if err != nil {
		m.emit(ctx, Event{Kind: EventKeyError, Err: err})
		return zero, err
	}

	if v, ok := m.store.Lookup(ctx, id); ok {
		m.emit(ctx, Event{Kind: EventHit, Identity: id})
		return v, nil
	}

	if m.race == RaceCoalesce {
		return m.coalesce(ctx, id, args)
	}

	m.emit(ctx, Event{Kind: EventMiss, Identity: id})
	return m.invoke(ctx, id, args)
}

// invoke runs the function and inserts a successful result.
func (m *Memoizer[R]) invoke(ctx context.Context, id Identity, args Args) (R, error) {
	start := time.Now()
	v, err := m.fn(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		m.emit(ctx, Event{Kind: EventCallError, Identity: id, Duration: elapsed, Err: err})
		return v, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		m.emit(ctx, Event{Kind: EventDiscard, Identity: id, Duration: elapsed, Err: ctxErr})
		return v, nil
	}

	m.store.Insert(ctx, id, v)
	m.emit(ctx, Event{Kind: EventStore, Identity: id, Duration: elapsed})
	return v, nil
}

// coalesce shares one in-flight call per Identity. The flight runs with the
// context of the caller that started it; a waiter whose own context ends
// stops waiting without affecting the flight.
func (m *Memoizer[R]) coalesce(ctx context.Context, id Identity, args Args) (R, error) {
	var zero R
	for {
		var led atomic.Bool
		ch := m.flights.DoChan(id.Key(), func() (any, error) {
			led.Store(true)
			return m.flight(ctx, id, args)
		})

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-ch:
			if p, ok := res.Err.(*flightPanic); ok {
				panic(p.value)
			}
			if !led.Load() {
				// The leader was cancelled, not this caller: try again.
				if res.Err != nil && ctx.Err() == nil && isContextErr(res.Err) {
					continue
				}
				m.emit(ctx, Event{Kind: EventShared, Identity: id, Err: res.Err})
			}
			v, _ := res.Val.(R)
			return v, res.Err
		}
	}
}

func (m *Memoizer[R]) flight(ctx context.Context, id Identity, args Args) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &flightPanic{value: r}
		}
	}()

	// A previous flight may have stored the result after our lookup.
	if v, ok := m.store.Lookup(ctx, id); ok {
		m.emit(ctx, Event{Kind: EventHit, Identity: id})
		return v, nil
	}
	m.emit(ctx, Event{Kind: EventMiss, Identity: id})
	return m.invoke(ctx, id, args)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Func returns Call as a Func, for chaining memoizers or decorators.
func (m *Memoizer[R]) Func() Func[R] {
	return m.Call
}

// Identity returns the Identity Call would use for args.
func (m *Memoizer[R]) Identity(args Args) (Identity, error) {
	return m.keys.Build(args)
}

// Forget removes the stored result for args, if any.
func (m *Memoizer[R]) Forget(ctx context.Context, args Args) error {
	id, err := m.keys.Build(args)
	if err != nil {
		return err
	}
	m.store.Delete(ctx, id)
	return nil
}

// Len returns the number of stored results.
func (m *Memoizer[R]) Len() int {
	return m.store.Len()
}

// ID returns the unique id of this Memoizer.
func (m *Memoizer[R]) ID() string {
	return m.id
}

// Name returns the name set with WithName.
func (m *Memoizer[R]) Name() string {
	return m.name
}

func (m *Memoizer[R]) emit(ctx context.Context, e Event) {
	if m.observer == nil {
		return
	}
	e.Name = m.name
	e.Instance = m.id
	m.observer.Observe(ctx, e)
}
