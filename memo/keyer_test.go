package memo

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

func mustBuild(t *testing.T, b *KeyBuilder, args Args) Identity {
	t.Helper()
	id, err := b.Build(args)
	if err != nil {
		t.Fatalf("Build(%+v) error = %v", args, err)
	}
	return id
}

func TestKeyBuilder_Deterministic(t *testing.T) {
	b := NewKeyBuilder()

	args := P(1, "two", 3.5).With("flag", true)
	id1 := mustBuild(t, b, args)
	id2 := mustBuild(t, b, args)

	if !id1.Equal(id2) {
		t.Errorf("same call should build equal identities:\n  id1=%s\n  id2=%s", id1.Key(), id2.Key())
	}
	if id1.Hash() != id2.Hash() {
		t.Errorf("same call should hash equal: %d != %d", id1.Hash(), id2.Hash())
	}
	if id1.IsZero() {
		t.Error("built identity should not be zero")
	}
}

func TestKeyBuilder_NamedOrderIndependent(t *testing.T) {
	b := NewKeyBuilder()

	ab := Args{Named: map[string]any{"a": 1, "b": 2}}
	ba := Args{}.With("b", 2).With("a", 1)

	if !mustBuild(t, b, ab).Equal(mustBuild(t, b, ba)) {
		t.Error("named arguments supplied in different order should build the same identity")
	}
}

func TestKeyBuilder_Distinct(t *testing.T) {
	b := NewKeyBuilder()

	tests := []struct {
		name string
		x, y Args
	}{
		{"positional order", P(1, 2), P(2, 1)},
		{"positional arity", P(1, 2), P(1)},
		{"mixed signature", P(2).With("b", 3), P(2, 3)},
		{"positional vs named", P(1), Args{}.With("a", 1)},
		{"named value", Args{}.With("a", 1), Args{}.With("a", 2)},
		{"named name", Args{}.With("a", 1), Args{}.With("b", 1)},
		{"int vs int64", P(1), P(int64(1))},
		{"int vs float", P(1), P(1.0)},
		{"string vs int", P("1"), P(1)},
		{"nil vs zero", P(nil), P(0)},
		{"no args vs nil arg", Args{}, P(nil)},
		{"string with separators", P("a,b"), P("a", "b")},
		{"empty string vs none", P(""), Args{}},
		{"array order", P([2]int{1, 2}), P([2]int{2, 1})},
		{"complex parts", P(complex(1, 2)), P(complex(2, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idX := mustBuild(t, b, tt.x)
			idY := mustBuild(t, b, tt.y)
			if idX.Equal(idY) {
				t.Errorf("identities should differ, both are %s", idX.Key())
			}
		})
	}
}

func TestKeyBuilder_ZeroArguments(t *testing.T) {
	b := NewKeyBuilder()

	id1 := mustBuild(t, b, Args{})
	id2 := mustBuild(t, b, Args{Positional: []any{}, Named: map[string]any{}})
	if !id1.Equal(id2) {
		t.Error("empty and zero Args should build the same identity")
	}
}

func TestKeyBuilder_Floats(t *testing.T) {
	b := NewKeyBuilder()

	negZero := math.Copysign(0, -1)
	if !mustBuild(t, b, P(0.0)).Equal(mustBuild(t, b, P(negZero))) {
		t.Error("+0 and -0 should build the same identity")
	}
	if !mustBuild(t, b, P(math.NaN())).Equal(mustBuild(t, b, P(math.NaN()))) {
		t.Error("NaN arguments should build the same identity")
	}
	if mustBuild(t, b, P(0.1)).Equal(mustBuild(t, b, P(0.1000001))) {
		t.Error("different floats should build different identities")
	}
}

func TestKeyBuilder_MapProjection(t *testing.T) {
	b := NewKeyBuilder()

	m1 := map[string]any{"b": 2, "a": 1, "c": map[string]int{"y": 2, "x": 1}}
	m2 := map[string]any{"c": map[string]int{"x": 1, "y": 2}, "a": 1, "b": 2}
	m3 := map[string]any{"a": 1, "b": 3, "c": map[string]int{"x": 1, "y": 2}}

	id1 := mustBuild(t, b, P(m1))
	id2 := mustBuild(t, b, P(m2))
	id3 := mustBuild(t, b, P(m3))

	if !id1.Equal(id2) {
		t.Errorf("maps with equal entries should build the same identity:\n  id1=%s\n  id2=%s", id1.Key(), id2.Key())
	}
	if id1.Equal(id3) {
		t.Error("maps with different entries should build different identities")
	}

	var nilMap map[string]int
	if !mustBuild(t, b, P(nilMap)).Equal(mustBuild(t, b, P(map[string]int{}))) {
		t.Error("nil and empty maps of the same type should build the same identity")
	}
}

func TestKeyBuilder_RejectsUnhashable(t *testing.T) {
	b := NewKeyBuilder()

	type tagged struct {
		Name string
		Tags []string
	}

	tests := []struct {
		name      string
		args      Args
		wantIndex int
		wantName  string
		wantType  reflect.Type
		wantPath  string
	}{
		{
			name:      "slice positional",
			args:      P(1, []int{1, 2}),
			wantIndex: 1,
			wantType:  reflect.TypeOf([]int{}),
		},
		{
			name:      "func named",
			args:      Args{}.With("callback", func() {}),
			wantIndex: -1,
			wantName:  "callback",
			wantType:  reflect.TypeOf(func() {}),
		},
		{
			name:      "slice inside struct",
			args:      P(tagged{Name: "x", Tags: []string{"a"}}),
			wantIndex: 0,
			wantType:  reflect.TypeOf([]string{}),
			wantPath:  ".Tags",
		},
		{
			name:      "slice inside map value",
			args:      P(map[string]any{"k": []int{1}}),
			wantIndex: 0,
			wantType:  reflect.TypeOf([]int{}),
			wantPath:  "[k]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.args)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var kerr *KeyConstructionError
			if !errors.As(err, &kerr) {
				t.Fatalf("expected *KeyConstructionError, got %T", err)
			}
			if !errors.Is(err, ErrUnhashable) {
				t.Errorf("expected errors.Is(err, ErrUnhashable), got %v", err)
			}
			if kerr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", kerr.Index, tt.wantIndex)
			}
			if kerr.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", kerr.Name, tt.wantName)
			}
			if kerr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", kerr.Type, tt.wantType)
			}
			if kerr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", kerr.Path, tt.wantPath)
			}
		})
	}
}

func TestKeyConstructionError_Message(t *testing.T) {
	_, err := NewKeyBuilder().Build(Args{}.With("items", []int{1}))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{`argument "items"`, "[]int", "not hashable"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should contain %q", msg, want)
		}
	}
}

func TestKeyBuilder_EmptyName(t *testing.T) {
	_, err := NewKeyBuilder().Build(Args{}.With("", 1))
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestKeyBuilder_TooDeep(t *testing.T) {
	loop := map[string]any{}
	loop["self"] = loop

	_, err := NewKeyBuilder().Build(P(loop))
	if !errors.Is(err, ErrKeyTooDeep) {
		t.Errorf("expected ErrKeyTooDeep, got %v", err)
	}
}

func TestKeyBuilder_Pointers(t *testing.T) {
	b := NewKeyBuilder()

	type box struct{ n int }
	p1 := &box{n: 1}
	p2 := &box{n: 1}

	if !mustBuild(t, b, P(p1)).Equal(mustBuild(t, b, P(p1))) {
		t.Error("same pointer should build the same identity")
	}
	if mustBuild(t, b, P(p1)).Equal(mustBuild(t, b, P(p2))) {
		t.Error("distinct pointers should build different identities")
	}

	id := mustBuild(t, b, P(p1))
	if len(id.refs) != 1 {
		t.Errorf("identity should retain 1 reference, got %d", len(id.refs))
	}

	var nilBox *box
	if mustBuild(t, b, P(nilBox)).Equal(mustBuild(t, b, P(nil))) {
		t.Error("typed nil pointer and untyped nil should build different identities")
	}
}

func TestKeyBuilder_StructFields(t *testing.T) {
	b := NewKeyBuilder()

	type point struct {
		X, y int
		Tag  any
	}

	if !mustBuild(t, b, P(point{1, 2, "a"})).Equal(mustBuild(t, b, P(point{1, 2, "a"}))) {
		t.Error("equal structs should build the same identity")
	}
	if mustBuild(t, b, P(point{1, 2, "a"})).Equal(mustBuild(t, b, P(point{1, 3, "a"}))) {
		t.Error("structs differing in an unexported field should build different identities")
	}
	if mustBuild(t, b, P(point{1, 2, "a"})).Equal(mustBuild(t, b, P(point{1, 2, 1}))) {
		t.Error("structs differing in an interface field should build different identities")
	}
}

type userRef struct {
	ID    int
	Roles []string
}

func (u userRef) MemoKey() any { return u.ID }

func TestKeyBuilder_Projector(t *testing.T) {
	b := NewKeyBuilder()

	u1 := userRef{ID: 7, Roles: []string{"admin"}}
	u2 := userRef{ID: 7, Roles: []string{"guest"}}
	u3 := userRef{ID: 8}

	if !mustBuild(t, b, P(u1)).Equal(mustBuild(t, b, P(u2))) {
		t.Error("values with the same MemoKey should build the same identity")
	}
	if mustBuild(t, b, P(u1)).Equal(mustBuild(t, b, P(u3))) {
		t.Error("values with different MemoKey should build different identities")
	}
	if mustBuild(t, b, P(u1)).Equal(mustBuild(t, b, P(7))) {
		t.Error("a projected value should not collide with its projection")
	}
}

func TestKeyBuilder_WithProjection(t *testing.T) {
	b := NewKeyBuilder(WithProjection(func(s []string) any {
		return strings.Join(s, "\x00")
	}))

	id1 := mustBuild(t, b, P([]string{"a", "b"}))
	id2 := mustBuild(t, b, P([]string{"a", "b"}))
	id3 := mustBuild(t, b, P([]string{"b", "a"}))

	if !id1.Equal(id2) {
		t.Error("projected slices with equal content should build the same identity")
	}
	if id1.Equal(id3) {
		t.Error("projected slices with different order should build different identities")
	}

	if _, err := b.Build(P([]int{1})); !errors.Is(err, ErrUnhashable) {
		t.Errorf("slice type without projection should still fail, got %v", err)
	}
}

type labelSet []string

func (l labelSet) String() string { return strings.Join(l, ",") }

func TestKeyBuilder_WithInterfaceProjection(t *testing.T) {
	b := NewKeyBuilder(WithProjection(func(s fmt.Stringer) any {
		return s.String()
	}))

	id1 := mustBuild(t, b, P(labelSet{"a", "b"}))
	id2 := mustBuild(t, b, P(labelSet{"a", "b"}))
	id3 := mustBuild(t, b, P(labelSet{"b"}))
	if !id1.Equal(id2) {
		t.Error("values projected through an interface should build the same identity")
	}
	if id1.Equal(id3) {
		t.Error("different projections should build different identities")
	}

	named := mustBuild(t, b, Args{Named: map[string]any{"labels": labelSet{"a"}}})
	if named.IsZero() {
		t.Error("named interface-projected argument should build an identity")
	}

	exact := NewKeyBuilder(
		WithProjection(func(fmt.Stringer) any { return "stringer" }),
		WithProjection(func(l labelSet) any { return len(l) }),
	)
	if !mustBuild(t, exact, P(labelSet{"a"})).Equal(mustBuild(t, exact, P(labelSet{"z"}))) {
		t.Error("exact type projection should take precedence over an interface projection")
	}

	if _, err := NewKeyBuilder().Build(P(labelSet{"a"})); !errors.Is(err, ErrUnhashable) {
		t.Errorf("without a projection the slice type should fail, got %v", err)
	}
}

func TestKeyBuilder_NamedDefaults(t *testing.T) {
	plain := NewKeyBuilder()
	withDefaults := NewKeyBuilder(WithNamedDefaults(map[string]any{"greeting": "Hello"}))

	implicit := P("Hari")
	explicit := P("Hari").With("greeting", "Hello")
	other := P("Hari").With("greeting", "Hi")

	if mustBuild(t, plain, implicit).Equal(mustBuild(t, plain, explicit)) {
		t.Error("without defaults, omitted and explicit default should be distinct")
	}
	if !mustBuild(t, withDefaults, implicit).Equal(mustBuild(t, withDefaults, explicit)) {
		t.Error("with defaults, omitted and explicit default should unify")
	}
	if mustBuild(t, withDefaults, implicit).Equal(mustBuild(t, withDefaults, other)) {
		t.Error("with defaults, a non-default value should stay distinct")
	}
}

func TestIdentity_String(t *testing.T) {
	id := mustBuild(t, NewKeyBuilder(), P(1))
	if got := id.String(); len(got) != 16 {
		t.Errorf("String() = %q, want 16 hex chars", got)
	}
}
