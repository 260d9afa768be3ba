package memo

import (
	"errors"
	"fmt"
	"reflect"
)

// MaxKeyDepth bounds how deeply nested an argument may be.
const MaxKeyDepth = 64

// Sentinel errors for memo operations.
var (
	ErrNilFunc         = errors.New("memo: function is nil")
	ErrNilStore        = errors.New("memo: store is nil")
	ErrUnhashable      = errors.New("memo: value is not hashable")
	ErrKeyTooDeep      = errors.New("memo: argument nesting exceeds max depth")
	ErrInvalidName     = errors.New("memo: named argument has an empty name")
	ErrInvalidCapacity = errors.New("memo: capacity must not be negative")
	ErrArgMissing      = errors.New("memo: argument missing")
	ErrArgType         = errors.New("memo: argument has unexpected type")
)

// KeyConstructionError reports an argument that cannot become part of an
// Identity. The wrapped function is not invoked for that call.
type KeyConstructionError struct {
	// Index is the positional index, or -1 for a named argument.
	Index int

	// Name is the argument name when Index is -1.
	Name string

	// Type is the type of the offending value. Nil when the argument name
	// itself was rejected.
	Type reflect.Type

	// Path locates the offending value inside the argument, e.g. ".Tags".
	Path string

	Err error
}

func (e *KeyConstructionError) Error() string {
	arg := fmt.Sprintf("argument %d", e.Index)
	if e.Index < 0 {
		arg = fmt.Sprintf("argument %q", e.Name)
	}
	if e.Path != "" {
		arg += " at " + e.Path
	}
	typ := "<nil>"
	if e.Type != nil {
		typ = e.Type.String()
	}
	return fmt.Sprintf("memo: cannot build key for %s (type %s): %v", arg, typ, e.Err)
}

func (e *KeyConstructionError) Unwrap() error {
	return e.Err
}

// keyFault is raised while encoding a single argument; Build turns it into a
// KeyConstructionError once the argument position is known.
type keyFault struct {
	typ  reflect.Type
	path string
	err  error
}

func (f *keyFault) Error() string {
	return f.err.Error()
}

func (f *keyFault) within(segment string) *keyFault {
	f.path = segment + f.path
	return f
}

// flightPanic carries a panic out of a coalesced call so every caller
// sharing the flight re-panics in its own goroutine.
type flightPanic struct {
	value any
}

func (p *flightPanic) Error() string {
	return fmt.Sprintf("memo: wrapped function panicked: %v", p.value)
}
