package memo

import (
	"context"
	"time"
)

// EventKind classifies an Event.
type EventKind int

const (
	// EventHit is a lookup that returned a stored result.
	EventHit EventKind = iota
	// EventMiss is a lookup that found nothing; the function runs next.
	EventMiss
	// EventShared is a caller that received another caller's in-flight
	// result under RaceCoalesce.
	EventShared
	// EventStore is a successful call whose result was inserted.
	EventStore
	// EventDiscard is a successful call whose context ended first; the
	// result was returned but not inserted.
	EventDiscard
	// EventCallError is a failed call. Nothing was inserted.
	EventCallError
	// EventKeyError is a call rejected before lookup because its arguments
	// had no hashable form.
	EventKeyError
)

func (k EventKind) String() string {
	switch k {
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventShared:
		return "shared"
	case EventStore:
		return "store"
	case EventDiscard:
		return "discard"
	case EventCallError:
		return "call_error"
	case EventKeyError:
		return "key_error"
	default:
		return "unknown"
	}
}

// Event describes one step of a memoized call.
type Event struct {
	Kind EventKind

	// Name is the Memoizer name set with WithName.
	Name string

	// Instance is the Memoizer ID.
	Instance string

	// Identity is zero for EventKeyError.
	Identity Identity

	// Duration is the function's run time for EventStore, EventDiscard and
	// EventCallError.
	Duration time.Duration

	Err error
}

// Observer receives memoization events. Observe is called synchronously on
// the calling goroutine and must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, e Event) {
	f(ctx, e)
}
