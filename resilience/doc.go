// Package resilience provides resilience patterns for memoized functions.
//
// A memoizer only invokes its function on a miss, so everything in this
// package acts on misses: retries, timeouts and concurrency limits wrap the
// real invocation and never the cache lookup. None of the patterns turn a
// failure into a cached value; an invocation that ultimately fails returns
// an error and the memoizer stores nothing.
//
// # Patterns
//
//   - Retry: re-invokes a failing function with exponential, linear or
//     constant backoff. Context errors are never retried by default.
//
//   - Timeout: bounds a single invocation and reports ErrTimeout.
//
//   - Bulkhead: bounds how many invocations run at once.
//
//   - Rate Limiter: bounds how often the function is invoked, using a
//     token bucket.
//
//   - Circuit Breaker: stops invoking a function that keeps failing.
//
// # Usage
//
// Patterns compose through an Executor, which Decorate turns into a
// memo.Decorator:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	m, err := memo.New(memo.Chain(fetchUser, resilience.Decorate[User](exec)))
package resilience
