package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/memoize/memo"
)

// Executor composes multiple resilience patterns.
type Executor struct {
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor. Nil components passed to
// the options are ignored.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithTimeout bounds each attempt to timeout.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds a preconfigured timeout to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs op through all configured patterns, outermost first:
// rate limiter, bulkhead, circuit breaker, retry, timeout. The timeout
// applies to every attempt separately and a bulkhead slot is held across
// all retries of one invocation.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}

	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// Decorate adapts e to a memoized function. Only misses reach the
// decorator, so the executor bounds real invocations; failures, including
// ErrTimeout and ErrBulkheadFull, come back as errors and are never cached.
// A nil executor yields a nil decorator, which memo.Chain skips.
func Decorate[R any](e *Executor) memo.Decorator[R] {
	if e == nil {
		return nil
	}
	return func(next memo.Func[R]) memo.Func[R] {
		return func(ctx context.Context, args memo.Args) (R, error) {
			// A timed-out attempt keeps running in the background, so the
			// result slot is shared with it under a lock.
			var (
				mu     sync.Mutex
				result R
			)
			err := e.Execute(ctx, func(ctx context.Context) error {
				v, err := next(ctx, args)
				if err != nil {
					return err
				}
				mu.Lock()
				result = v
				mu.Unlock()
				return nil
			})
			if err != nil {
				var zero R
				return zero, err
			}

			mu.Lock()
			defer mu.Unlock()
			return result, nil
		}
	}
}
