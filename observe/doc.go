// Package observe provides observability for memoized functions.
//
// A Recorder turns memo events (hits, misses, shared results, key errors)
// into OpenTelemetry metrics and log lines. Decorate wraps the underlying
// function so every real invocation gets a span, a duration sample and a
// log line; hits never reach it.
//
//	obs, _ := observe.NewObserver(ctx, cfg)
//	mw, _ := observe.MiddlewareFromObserver(obs)
//	rec, _ := observe.RecorderFromObserver(obs, meta)
//	m, _ := memo.New(
//		memo.Chain(fetch, observe.Decorate[User](mw, meta)),
//		memo.WithObserver(rec),
//	)
//
// The package never touches memoized values. Argument and result fields
// are redacted by the loggers.
package observe
