package memo

import (
	"fmt"
	"maps"
)

// Args is the argument shape of one call: positional values in order and
// named values by name. A zero Args is a call with no arguments.
type Args struct {
	Positional []any
	Named      map[string]any
}

// P returns Args holding the given positional values.
func P(values ...any) Args {
	return Args{Positional: values}
}

// Named returns Args holding a copy of the given named values.
func Named(named map[string]any) Args {
	return Args{Named: maps.Clone(named)}
}

// With returns a copy of a with the named value set. a is left unchanged.
func (a Args) With(name string, value any) Args {
	named := make(map[string]any, len(a.Named)+1)
	maps.Copy(named, a.Named)
	named[name] = value
	return Args{Positional: a.Positional, Named: named}
}

// Get returns the named value and whether it was supplied.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.Named[name]
	return v, ok
}

// Len returns the total number of supplied arguments.
func (a Args) Len() int {
	return len(a.Positional) + len(a.Named)
}

// ArgAt returns positional argument i converted to T. A nil argument
// converts to the zero value of T.
func ArgAt[T any](a Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a.Positional) {
		return zero, fmt.Errorf("%w: position %d", ErrArgMissing, i)
	}
	return typed[T](a.Positional[i], fmt.Sprintf("position %d", i))
}

// NamedOr returns the named argument converted to T, or fallback when the
// caller did not supply it.
func NamedOr[T any](a Args, name string, fallback T) (T, error) {
	v, ok := a.Named[name]
	if !ok {
		return fallback, nil
	}
	return typed[T](v, fmt.Sprintf("name %q", name))
}

func typed[T any](v any, where string) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return t, fmt.Errorf("%w: %s holds %T", ErrArgType, where, v)
	}
	return t, nil
}
