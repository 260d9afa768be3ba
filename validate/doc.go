// Package validate rejects bad arguments before a memoized function runs.
//
// Rules inspect memo.Args and return an *ArgumentError on failure. Decorate
// turns a set of rules into a memo.Decorator; applied above the memoizer,
// invalid calls never build a key, never run and are never cached:
//
//	m, _ := memo.New(square)
//	checked := memo.Chain(m.Func(), validate.Decorate[int](validate.NonNegative[int](0)))
package validate
