package observe

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/memoize/memo"
)

// Recorder implements memo.Observer. It counts lookups and key errors and
// logs store decisions at debug level.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording is best-effort and never affects the memoized call.
type Recorder struct {
	meta    FuncMeta
	metrics Metrics
	logger  Logger
}

// NewRecorder creates a Recorder for one memoized function. Nil metrics
// or logger disable that output.
func NewRecorder(meta FuncMeta, metrics Metrics, logger Logger) (*Recorder, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Recorder{
		meta:    meta,
		metrics: metrics,
		logger:  logger.WithFunc(meta),
	}, nil
}

// RecorderFromObserver creates a Recorder using the Observer's meter and logger.
func RecorderFromObserver(obs Observer, meta FuncMeta) (*Recorder, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewRecorder(meta, metrics, obs.Logger())
}

// Observe records one memo event.
func (r *Recorder) Observe(ctx context.Context, e memo.Event) {
	switch e.Kind {
	case memo.EventHit:
		r.metrics.RecordLookup(ctx, r.meta, ResultHit)
	case memo.EventMiss:
		r.metrics.RecordLookup(ctx, r.meta, ResultMiss)
	case memo.EventShared:
		r.metrics.RecordLookup(ctx, r.meta, ResultShared)
	case memo.EventKeyError:
		r.metrics.RecordKeyError(ctx, r.meta)
		r.logger.Warn(ctx, "memo key construction failed", r.fields(e)...)
	case memo.EventStore:
		r.logger.Debug(ctx, "memo result stored", r.fields(e)...)
	case memo.EventDiscard:
		r.logger.Debug(ctx, "memo result discarded", r.fields(e)...)
	case memo.EventCallError:
		r.logger.Debug(ctx, "memo result not stored", r.fields(e)...)
	}
}

// Track reports size as the memo.entries gauge, typically a Memoizer's Len.
func (r *Recorder) Track(size func() int) (metric.Registration, error) {
	return r.metrics.RegisterEntries(r.meta, size)
}

func (r *Recorder) fields(e memo.Event) []Field {
	fields := []Field{
		{Key: "memo.instance", Value: e.Instance},
	}
	if !e.Identity.IsZero() {
		fields = append(fields, Field{Key: "memo.key", Value: e.Identity.String()})
	}
	if e.Duration > 0 {
		fields = append(fields, Field{Key: "duration_ms", Value: e.Duration.Milliseconds()})
	}
	if e.Err != nil {
		fields = append(fields, Field{Key: "error", Value: e.Err.Error()})
	}
	return fields
}

// Ensure Recorder implements memo.Observer
var _ memo.Observer = (*Recorder)(nil)
