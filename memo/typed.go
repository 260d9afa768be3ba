package memo

import "context"

// Wrap0 memoizes a function without arguments: it runs once successfully
// and its result is reused afterwards.
func Wrap0[R any](fn func(context.Context) (R, error), opts ...Option) (func(context.Context) (R, error), error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := New(func(ctx context.Context, _ Args) (R, error) {
		return fn(ctx)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (R, error) {
		return m.Call(ctx, Args{})
	}, nil
}

// Wrap1 memoizes a one-argument function. The returned function has the
// same signature as fn.
func Wrap1[A, R any](fn func(context.Context, A) (R, error), opts ...Option) (func(context.Context, A) (R, error), error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := New(func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, as[A](args.Positional[0]))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A) (R, error) {
		return m.Call(ctx, P(a))
	}, nil
}

// Wrap2 memoizes a two-argument function.
func Wrap2[A, B, R any](fn func(context.Context, A, B) (R, error), opts ...Option) (func(context.Context, A, B) (R, error), error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := New(func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, as[A](args.Positional[0]), as[B](args.Positional[1]))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A, b B) (R, error) {
		return m.Call(ctx, P(a, b))
	}, nil
}

// Wrap3 memoizes a three-argument function.
func Wrap3[A, B, C, R any](fn func(context.Context, A, B, C) (R, error), opts ...Option) (func(context.Context, A, B, C) (R, error), error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	m, err := New(func(ctx context.Context, args Args) (R, error) {
		return fn(ctx, as[A](args.Positional[0]), as[B](args.Positional[1]), as[C](args.Positional[2]))
	}, opts...)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A, b B, c C) (R, error) {
		return m.Call(ctx, P(a, b, c))
	}, nil
}

// Must panics if err is non-nil. It is meant for package-level wrappers:
//
//	var lookup = memo.Must(memo.Wrap1(fetchUser))
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// as converts a boxed argument back to T; a nil box yields the zero T.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
