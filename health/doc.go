// Package health reports whether memoizer caches are within their budgets.
//
// A Checker produces a Result with a Status; StoreChecker compares the entry
// count of anything with a Len method (a memo.Memoizer or any memo.Store)
// against a configured budget, which matters most for the unbounded
// MemoryStore. An Aggregator runs many checkers concurrently under one
// timeout and folds their results into an overall Status:
//
//	agg := health.NewAggregator()
//	agg.Register("users", health.NewStoreChecker(health.StoreCheckerConfig{
//		Name:   "users",
//		Store:  usersMemo,
//		Budget: 10_000,
//	}))
//	results := agg.CheckAll(ctx)
//	status := health.Overall(results)
package health
