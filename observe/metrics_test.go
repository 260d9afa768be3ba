package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// TestMetrics_LookupsByResult verifies memo.lookups carries the memo.result attribute.
func TestMetrics_LookupsByResult(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := FuncMeta{Namespace: "users", Name: "fetch"}

	m.RecordLookup(ctx, meta, ResultMiss)
	m.RecordLookup(ctx, meta, ResultHit)
	m.RecordLookup(ctx, meta, ResultHit)
	m.RecordLookup(ctx, meta, ResultShared)

	found := findMetric(collect(t, reader), "memo.lookups")
	if found == nil {
		t.Fatal("memo.lookups metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("memo.result"))
		if !ok {
			t.Fatal("data point missing memo.result attribute")
		}
		counts[v.AsString()] = dp.Value

		if id, _ := dp.Attributes.Value(attribute.Key("func.id")); id.AsString() != "users.fetch" {
			t.Errorf("expected func.id=users.fetch, got %q", id.AsString())
		}
	}

	want := map[string]int64{ResultHit: 2, ResultMiss: 1, ResultShared: 1}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("expected %s=%d, got %d", k, v, counts[k])
		}
	}
}

// TestMetrics_KeyErrors verifies memo.key_errors is incremented.
func TestMetrics_KeyErrors(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordKeyError(context.Background(), FuncMeta{Name: "f"})

	found := findMetric(collect(t, reader), "memo.key_errors")
	if found == nil {
		t.Fatal("memo.key_errors metric not found")
	}
	sum := found.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("expected a single data point with value 1, got %+v", sum.DataPoints)
	}
}

// TestMetrics_CallsAndErrors verifies memo.calls and memo.call_errors.
func TestMetrics_CallsAndErrors(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := FuncMeta{Name: "f"}

	m.RecordCall(ctx, meta, 10*time.Millisecond, nil)
	m.RecordCall(ctx, meta, 10*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)

	calls := findMetric(rm, "memo.calls")
	if calls == nil {
		t.Fatal("memo.calls metric not found")
	}
	if v := calls.Data.(metricdata.Sum[int64]).DataPoints[0].Value; v != 2 {
		t.Errorf("expected memo.calls=2, got %d", v)
	}

	errs := findMetric(rm, "memo.call_errors")
	if errs == nil {
		t.Fatal("memo.call_errors metric not found")
	}
	if v := errs.Data.(metricdata.Sum[int64]).DataPoints[0].Value; v != 1 {
		t.Errorf("expected memo.call_errors=1, got %d", v)
	}
}

// TestMetrics_ErrorCounterOnSuccess verifies no error data point on success.
func TestMetrics_ErrorCounterOnSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), FuncMeta{Name: "ok"}, time.Millisecond, nil)

	found := findMetric(collect(t, reader), "memo.call_errors")
	if found == nil {
		return
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if ok && len(sum.DataPoints) > 0 && sum.DataPoints[0].Value != 0 {
		t.Errorf("expected errors count 0, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_DurationHistogramRecords verifies the duration histogram in milliseconds.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), FuncMeta{Name: "slow"}, 1500*time.Microsecond, nil)

	found := findMetric(collect(t, reader), "memo.call.duration_ms")
	if found == nil {
		t.Fatal("memo.call.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Errorf("expected count 1, got %d", dp.Count)
	}
	if dp.Sum != 1.5 {
		t.Errorf("expected sum 1.5, got %f", dp.Sum)
	}
}

// TestMetrics_EntriesGauge verifies the observable gauge reads the size callback.
func TestMetrics_EntriesGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	size := 3

	reg, err := m.RegisterEntries(FuncMeta{Name: "f"}, func() int { return size })
	if err != nil {
		t.Fatalf("RegisterEntries failed: %v", err)
	}

	gaugeValue := func() (int64, bool) {
		found := findMetric(collect(t, reader), "memo.entries")
		if found == nil {
			return 0, false
		}
		g, ok := found.Data.(metricdata.Gauge[int64])
		if !ok || len(g.DataPoints) == 0 {
			return 0, false
		}
		return g.DataPoints[0].Value, true
	}

	if v, ok := gaugeValue(); !ok || v != 3 {
		t.Errorf("expected memo.entries=3, got %d (found=%v)", v, ok)
	}

	size = 5
	if v, ok := gaugeValue(); !ok || v != 5 {
		t.Errorf("expected memo.entries=5, got %d (found=%v)", v, ok)
	}

	if err := reg.Unregister(); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
}

// TestMetrics_ConcurrentRecording verifies concurrent recording is safe.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Name: "concurrent"}

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordLookup(context.Background(), meta, ResultHit)
		}()
	}
	wg.Wait()

	found := findMetric(collect(t, reader), "memo.lookups")
	if found == nil {
		t.Fatal("memo.lookups metric not found")
	}
	sum := found.Data.(metricdata.Sum[int64])
	if sum.DataPoints[0].Value != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, sum.DataPoints[0].Value)
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
