package memo

import (
	"context"
	"testing"
)

type benchUser struct {
	ID    int
	Name  string
	Attrs map[string]string
}

// BenchmarkKeyBuilder_Scalars measures key construction for simple arguments.
func BenchmarkKeyBuilder_Scalars(b *testing.B) {
	kb := NewKeyBuilder()
	args := P(1, "two", 3.0).With("flag", true)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = kb.Build(args)
	}
}

// BenchmarkKeyBuilder_Struct measures key construction for a struct with a map.
func BenchmarkKeyBuilder_Struct(b *testing.B) {
	kb := NewKeyBuilder()
	args := P(benchUser{ID: 1, Name: "n", Attrs: map[string]string{"a": "1", "b": "2", "c": "3"}})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = kb.Build(args)
	}
}

// BenchmarkMemoizer_Hit measures the cost of a stored result.
func BenchmarkMemoizer_Hit(b *testing.B) {
	m, _ := New(func(_ context.Context, _ Args) (int, error) { return 1, nil })
	ctx := context.Background()
	args := P("key")
	_, _ = m.Call(ctx, args)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Call(ctx, args)
	}
}

// BenchmarkMemoizer_Hit_Parallel measures concurrent hits across shards.
func BenchmarkMemoizer_Hit_Parallel(b *testing.B) {
	m, _ := New(func(_ context.Context, _ Args) (int, error) { return 1, nil })
	ctx := context.Background()
	for i := 0; i < 64; i++ {
		_, _ = m.Call(ctx, P(i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = m.Call(ctx, P(i%64))
			i++
		}
	})
}

// BenchmarkMemoizer_Hit_Coalesce measures hits under the coalescing policy.
func BenchmarkMemoizer_Hit_Coalesce(b *testing.B) {
	m, _ := New(func(_ context.Context, _ Args) (int, error) { return 1, nil }, WithRacePolicy(RaceCoalesce))
	ctx := context.Background()
	args := P("key")
	_, _ = m.Call(ctx, args)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Call(ctx, args)
	}
}

// BenchmarkLRUStore_Lookup measures bounded store lookups.
func BenchmarkLRUStore_Lookup(b *testing.B) {
	s, _ := NewLRUStore[int](1024)
	id, _ := NewKeyBuilder().Build(P("key"))
	ctx := context.Background()
	s.Insert(ctx, id, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Lookup(ctx, id)
	}
}
