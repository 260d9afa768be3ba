package memo_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/memoize/memo"
)

func ExampleNew() {
	calls := 0
	add := func(_ context.Context, args memo.Args) (int, error) {
		calls++
		a, _ := memo.ArgAt[int](args, 0)
		b, _ := memo.ArgAt[int](args, 1)
		return a + b, nil
	}

	m, err := memo.New(add)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctx := context.Background()

	first, _ := m.Call(ctx, memo.P(2, 3))
	second, _ := m.Call(ctx, memo.P(2, 3))
	fmt.Println(first, second)
	fmt.Println("calls:", calls)
	// Output:
	// 5 5
	// calls: 1
}

func ExampleArgs_With() {
	calls := 0
	greet := func(_ context.Context, args memo.Args) (string, error) {
		calls++
		name, _ := memo.ArgAt[string](args, 0)
		greeting, _ := memo.NamedOr(args, "greeting", "Hello")
		return greeting + ", " + name + "!", nil
	}

	m, _ := memo.New(greet)
	ctx := context.Background()

	a, _ := m.Call(ctx, memo.P("Hari").With("greeting", "Hi"))
	b, _ := m.Call(ctx, memo.P("Hari").With("greeting", "Hi"))
	fmt.Println(a, b)
	fmt.Println("calls:", calls)
	// Output:
	// Hi, Hari! Hi, Hari!
	// calls: 1
}

func ExampleWrap1() {
	upper := memo.Must(memo.Wrap1(func(_ context.Context, s string) (string, error) {
		fmt.Println("computing", s)
		return strings.ToUpper(s), nil
	}))

	ctx := context.Background()
	v1, _ := upper(ctx, "go")
	v2, _ := upper(ctx, "go")
	fmt.Println(v1, v2)
	// Output:
	// computing go
	// GO GO
}

func ExampleKeyConstructionError() {
	m, _ := memo.New(func(_ context.Context, args memo.Args) (int, error) {
		return args.Len(), nil
	})

	_, err := m.Call(context.Background(), memo.P([]int{1, 2}))

	var kerr *memo.KeyConstructionError
	if errors.As(err, &kerr) {
		fmt.Println("index:", kerr.Index)
		fmt.Println("type:", kerr.Type)
		fmt.Println("unhashable:", errors.Is(err, memo.ErrUnhashable))
	}
	// Output:
	// index: 0
	// type: []int
	// unhashable: true
}

func ExampleWithProjection() {
	calls := 0
	count := func(_ context.Context, args memo.Args) (int, error) {
		calls++
		tags, _ := memo.ArgAt[[]string](args, 0)
		return len(tags), nil
	}

	m, _ := memo.New(count, memo.WithProjection(func(tags []string) any {
		return strings.Join(tags, ",")
	}))
	ctx := context.Background()

	n1, _ := m.Call(ctx, memo.P([]string{"a", "b"}))
	n2, _ := m.Call(ctx, memo.P([]string{"a", "b"}))
	fmt.Println(n1, n2, "calls:", calls)
	// Output:
	// 2 2 calls: 1
}

func ExampleWithRacePolicy() {
	m, _ := memo.New(func(_ context.Context, _ memo.Args) (string, error) {
		return "shared", nil
	}, memo.WithRacePolicy(memo.RaceCoalesce))

	v, _ := m.Call(context.Background(), memo.P("key"))
	fmt.Println(v)
	// Output:
	// shared
}

func ExampleChain() {
	logged := func(next memo.Func[int]) memo.Func[int] {
		return func(ctx context.Context, args memo.Args) (int, error) {
			fmt.Println("miss")
			return next(ctx, args)
		}
	}
	double := func(_ context.Context, args memo.Args) (int, error) {
		n, _ := memo.ArgAt[int](args, 0)
		return n * 2, nil
	}

	m, _ := memo.New(memo.Chain(double, logged))
	ctx := context.Background()

	v1, _ := m.Call(ctx, memo.P(21))
	v2, _ := m.Call(ctx, memo.P(21))
	fmt.Println(v1, v2)
	// Output:
	// miss
	// 42 42
}
