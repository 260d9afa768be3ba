package memo

// Decorator wraps a Func with extra behavior such as timing, logging or
// retries.
type Decorator[R any] func(next Func[R]) Func[R]

// Chain applies decorators to fn. The first decorator is the outermost, so
// Chain(fn, a, b) behaves like a(b(fn)).
//
// Placed under a Memoizer, decorators only run on misses:
//
//	m, err := memo.New(memo.Chain(fetch, timer, retry))
func Chain[R any](fn Func[R], decorators ...Decorator[R]) Func[R] {
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] != nil {
			fn = decorators[i](fn)
		}
	}
	return fn
}
