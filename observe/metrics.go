package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Lookup results recorded under the memo.result attribute.
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultShared = "shared"
)

// Metrics records memoization metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup counts one lookup with its result (hit, miss or shared).
	RecordLookup(ctx context.Context, meta FuncMeta, result string)

	// RecordKeyError counts a call rejected because its arguments had no key.
	RecordKeyError(ctx context.Context, meta FuncMeta)

	// RecordCall records one invocation of the underlying function.
	RecordCall(ctx context.Context, meta FuncMeta, duration time.Duration, err error)

	// RegisterEntries reports size() as the memo.entries gauge until the
	// registration is unregistered.
	RegisterEntries(meta FuncMeta, size func() int) (metric.Registration, error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	lookups      metric.Int64Counter
	keyErrors    metric.Int64Counter
	calls        metric.Int64Counter
	callErrors   metric.Int64Counter
	durationHist metric.Float64Histogram
	entries      metric.Int64ObservableGauge
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	lookups, err := meter.Int64Counter(
		"memo.lookups",
		metric.WithDescription("Total number of memoized lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	keyErrors, err := meter.Int64Counter(
		"memo.key_errors",
		metric.WithDescription("Calls rejected because an argument has no key"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	calls, err := meter.Int64Counter(
		"memo.calls",
		metric.WithDescription("Invocations of the underlying function"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"memo.call_errors",
		metric.WithDescription("Failed invocations of the underlying function"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"memo.call.duration_ms",
		metric.WithDescription("Underlying function duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	entries, err := meter.Int64ObservableGauge(
		"memo.entries",
		metric.WithDescription("Number of stored results"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		lookups:      lookups,
		keyErrors:    keyErrors,
		calls:        calls,
		callErrors:   callErrors,
		durationHist: durationHist,
		entries:      entries,
	}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, meta FuncMeta, result string) {
	attrs := append(meta.attributes(), attribute.String("memo.result", result))
	m.lookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordKeyError(ctx context.Context, meta FuncMeta) {
	m.keyErrors.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *metricsImpl) RecordCall(ctx context.Context, meta FuncMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.callErrors.Add(ctx, 1, opt)
	}

	durationMs := float64(duration) / float64(time.Millisecond)
	m.durationHist.Record(ctx, durationMs, opt)
}

func (m *metricsImpl) RegisterEntries(meta FuncMeta, size func() int) (metric.Registration, error) {
	opt := metric.WithAttributes(meta.attributes()...)
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.entries, int64(size()), opt)
		return nil
	}, m.entries)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, FuncMeta, string) {}
func (noopMetrics) RecordKeyError(context.Context, FuncMeta)       {}

func (noopMetrics) RecordCall(context.Context, FuncMeta, time.Duration, error) {}

func (noopMetrics) RegisterEntries(FuncMeta, func() int) (metric.Registration, error) {
	return noop.Meter{}.RegisterCallback(nil)
}
