// Package config loads memoizer and telemetry settings from the environment.
//
// Every variable carries the MEMOIZE_ prefix:
//
//	MEMOIZE_SERVICE_NAME        service name reported to telemetry (default "memoize")
//	MEMOIZE_VERSION             service version
//	MEMOIZE_RACE_POLICY         last-write-wins | coalesce
//	MEMOIZE_CAPACITY            LRU bound, 0 for unbounded
//	MEMOIZE_SHARDS              shard count of the unbounded store
//	MEMOIZE_OTLP_ENDPOINT       OTLP collector endpoint for traces and metrics
//	MEMOIZE_OTLP_INSECURE       disable TLS towards the collector
//	MEMOIZE_TRACING_ENABLED     MEMOIZE_TRACING_EXPORTER     MEMOIZE_TRACING_SAMPLE_PCT
//	MEMOIZE_METRICS_ENABLED     MEMOIZE_METRICS_EXPORTER
//	MEMOIZE_LOG_ENABLED         MEMOIZE_LOG_LEVEL            MEMOIZE_LOG_BACKEND
//
// A typical program loads once and hands the pieces to the memo and
// observe packages:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	obs, err := observe.NewObserver(ctx, cfg.Observe())
//	...
//	opts, err := cfg.MemoOptions()
//	m, err := memo.New(fn, opts...)
package config
