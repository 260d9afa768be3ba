package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/memoize/memo"
)

// Middleware wraps the underlying function of a memoizer with tracing,
// metrics and logging. It sits below the memoizer, so only real
// invocations are observed.
//
// Contract:
//   - Concurrency: decorated functions are safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: arguments and results are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced by no-op implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Decorate returns a memo.Decorator that observes every invocation of the
// function it wraps:
//
//	m, err := memo.New(memo.Chain(fetch, observe.Decorate[User](mw, meta)))
//
// A nil Middleware yields a nil decorator, which memo.Chain skips.
func Decorate[R any](mw *Middleware, meta FuncMeta) memo.Decorator[R] {
	if mw == nil {
		return nil
	}
	return func(next memo.Func[R]) memo.Func[R] {
		return func(ctx context.Context, args memo.Args) (R, error) {
			var out R
			err := mw.observe(ctx, meta, args, func(ctx context.Context) error {
				var err error
				out, err = next(ctx, args)
				return err
			})
			return out, err
		}
	}
}

func (m *Middleware) observe(ctx context.Context, meta FuncMeta, args memo.Args, call func(context.Context) error) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)

	start := time.Now()
	err := call(ctx)
	duration := time.Since(start)

	m.tracer.EndSpan(span, err)
	m.metrics.RecordCall(ctx, meta, duration, err)

	logger := m.logger.WithFunc(meta)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
		{Key: "arg_count", Value: args.Len()},
		{Key: "args", Value: args},
	}

	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		logger.Error(ctx, "memoized function failed", fields...)
	} else {
		logger.Info(ctx, "memoized function completed", fields...)
	}

	return err
}
