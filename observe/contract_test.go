package observe

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/memoize/memo"
)

func TestObserverContract_Noops(t *testing.T) {
	cfg := Config{
		ServiceName: "observe-test",
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "none",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Exporter: "none",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
	}

	obs, err := NewObserver(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if obs.Tracer() == nil {
		t.Fatalf("expected non-nil tracer")
	}
	if obs.Meter() == nil {
		t.Fatalf("expected non-nil meter")
	}
	if obs.Logger() == nil {
		t.Fatalf("expected non-nil logger")
	}
}

func TestLoggerContract_WithFunc(t *testing.T) {
	for _, logger := range []Logger{&noopLogger{}, NewZapLogger(nil)} {
		if logger.WithFunc(FuncMeta{Name: "noop"}) == nil {
			t.Fatalf("WithFunc should return non-nil logger for %T", logger)
		}
	}
}

func TestMetricsContract_NoPanic(t *testing.T) {
	var metrics Metrics = noopMetrics{}
	ctx := context.Background()
	meta := FuncMeta{Name: "noop"}

	metrics.RecordLookup(ctx, meta, ResultHit)
	metrics.RecordKeyError(ctx, meta)
	metrics.RecordCall(ctx, meta, 10*time.Millisecond, nil)

	reg, err := metrics.RegisterEntries(meta, func() int { return 1 })
	if err != nil {
		t.Fatalf("RegisterEntries failed: %v", err)
	}
	if err := reg.Unregister(); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
}

func TestTracerContract_NoPanic(t *testing.T) {
	tracer := NewTracer(nil)
	_, span := tracer.StartSpan(context.Background(), FuncMeta{Name: "noop"})
	tracer.EndSpan(span, nil)
}

func TestRecorderContract_IsMemoObserver(t *testing.T) {
	rec, err := NewRecorder(FuncMeta{Name: "noop"}, nil, nil)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	var obs memo.Observer = rec
	obs.Observe(context.Background(), memo.Event{Kind: memo.EventHit})
}
