package validate

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/memoize/memo"
)

// ErrInvalidArgument is matched by every *ArgumentError.
var ErrInvalidArgument = errors.New("validate: invalid argument")

// ArgumentError reports which argument failed and why.
type ArgumentError struct {
	// Index is the positional index, or -1 for a named or whole-call rule.
	Index int

	// Name is the argument name for named rules.
	Name string

	// Err is the underlying failure.
	Err error
}

// Error returns the error message.
func (e *ArgumentError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("validate: argument %q: %v", e.Name, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("validate: argument %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("validate: %v", e.Err)
	}
}

// Unwrap returns the underlying failure.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Rule checks one aspect of a call's arguments.
type Rule func(memo.Args) error

// Positional checks positional argument i as a T. A missing argument or one
// of the wrong type fails without calling check.
func Positional[T any](i int, check func(T) error) Rule {
	return func(args memo.Args) error {
		v, err := memo.ArgAt[T](args, i)
		if err == nil {
			err = check(v)
		}
		if err != nil {
			return &ArgumentError{Index: i, Err: err}
		}
		return nil
	}
}

// Named checks the named argument as a T when it is supplied.
func Named[T any](name string, check func(T) error) Rule {
	return func(args memo.Args) error {
		raw, ok := args.Get(name)
		if !ok {
			return nil
		}
		v, isT := raw.(T)
		if !isT && raw != nil {
			return &ArgumentError{Index: -1, Name: name, Err: fmt.Errorf("%w: holds %T", memo.ErrArgType, raw)}
		}
		if err := check(v); err != nil {
			return &ArgumentError{Index: -1, Name: name, Err: err}
		}
		return nil
	}
}

// Required fails when the named argument is absent.
func Required(name string) Rule {
	return func(args memo.Args) error {
		if _, ok := args.Get(name); !ok {
			return &ArgumentError{Index: -1, Name: name, Err: memo.ErrArgMissing}
		}
		return nil
	}
}

// Arity bounds the number of positional arguments. A negative most means no
// upper bound.
func Arity(least, most int) Rule {
	return func(args memo.Args) error {
		n := len(args.Positional)
		if n < least || (most >= 0 && n > most) {
			return &ArgumentError{Index: -1, Err: fmt.Errorf("got %d positional arguments, want %s", n, arityRange(least, most))}
		}
		return nil
	}
}

func arityRange(least, most int) string {
	switch {
	case most < 0:
		return fmt.Sprintf("at least %d", least)
	case least == most:
		return fmt.Sprint(least)
	default:
		return fmt.Sprintf("%d to %d", least, most)
	}
}

// NonNegative requires positional argument i to be zero or greater.
func NonNegative[T cmp.Ordered](i int) Rule {
	return Positional(i, func(v T) error {
		var zero T
		if v < zero {
			return errors.New("only non-negative values allowed")
		}
		return nil
	})
}

// InRange requires positional argument i to lie in [lo, hi].
func InRange[T cmp.Ordered](i int, lo, hi T) Rule {
	return Positional(i, func(v T) error {
		if v < lo || v > hi {
			return fmt.Errorf("%v outside [%v, %v]", v, lo, hi)
		}
		return nil
	})
}

// Check runs rules in order and returns the first failure.
func Check(args memo.Args, rules ...Rule) error {
	for _, r := range rules {
		if r == nil {
			continue
		}
		if err := r(args); err != nil {
			return err
		}
	}
	return nil
}

// Decorate returns a decorator that runs rules before calling through. With
// no rules it returns nil, which memo.Chain skips.
func Decorate[R any](rules ...Rule) memo.Decorator[R] {
	if len(rules) == 0 {
		return nil
	}
	return func(next memo.Func[R]) memo.Func[R] {
		return func(ctx context.Context, args memo.Args) (R, error) {
			if err := Check(args, rules...); err != nil {
				var zero R
				return zero, err
			}
			return next(ctx, args)
		}
	}
}
