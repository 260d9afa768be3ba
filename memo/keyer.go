package memo

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Projector is implemented by argument types that supply their own key.
// MemoKey must return a hashable value and must be deterministic for the
// lifetime of the receiver.
type Projector interface {
	MemoKey() any
}

// KeyBuilder turns Args into an Identity.
//
// Contract:
// - Determinism: the same logical call yields equal identities regardless of
// named argument order or map iteration order.
// - Concurrency: safe for concurrent use.
// - Errors: values without a hashable form fail with *KeyConstructionError.
type KeyBuilder struct {
	projections map[reflect.Type]func(any) any
	ifaces      []ifaceProjection
	defaults    map[string]any
}

// ifaceProjection is a projection registered for an interface type. It
// applies to every concrete type implementing the interface.
type ifaceProjection struct {
	typ reflect.Type
	fn  func(any) any
}

// NewKeyBuilder creates a key builder. Only WithProjection and
// WithNamedDefaults affect it.
func NewKeyBuilder(opts ...Option) *KeyBuilder {
	o := collectOptions(opts)
	return newKeyBuilder(o)
}

func newKeyBuilder(o options) *KeyBuilder {
	var ifaces []ifaceProjection
	for t, fn := range o.projections {
		if t.Kind() == reflect.Interface {
			ifaces = append(ifaces, ifaceProjection{typ: t, fn: fn})
		}
	}
	// Several interfaces may match one value; the first by type name wins.
	slices.SortFunc(ifaces, func(a, b ifaceProjection) int {
		return strings.Compare(a.typ.String(), b.typ.String())
	})
	return &KeyBuilder{
		projections: o.projections,
		ifaces:      ifaces,
		defaults:    o.defaults,
	}
}

// Build returns the Identity of a call.
// Format: (<positional>,...;"<name>"=<named>,...)
// Each value is encoded as <type id>:<payload>, so values of different
// dynamic types never collide.
func (b *KeyBuilder) Build(args Args) (Identity, error) {
	named := args.Named
	if len(b.defaults) > 0 {
		named = make(map[string]any, len(b.defaults)+len(args.Named))
		for k, v := range b.defaults {
			named[k] = v
		}
		for k, v := range args.Named {
			named[k] = v
		}
	}

	enc := encoder{projections: b.projections, ifaces: b.ifaces}
	enc.buf.WriteByte('(')
	for i, v := range args.Positional {
		if i > 0 {
			enc.buf.WriteByte(',')
		}
		if f := enc.value(reflect.ValueOf(v)); f != nil {
			return Identity{}, &KeyConstructionError{Index: i, Type: f.typ, Path: f.path, Err: f.err}
		}
	}
	enc.buf.WriteByte(';')

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, name := range names {
		if name == "" {
			return Identity{}, &KeyConstructionError{Index: -1, Err: ErrInvalidName}
		}
		if i > 0 {
			enc.buf.WriteByte(',')
		}
		enc.buf.WriteString(strconv.Quote(name))
		enc.buf.WriteByte('=')
		if f := enc.value(reflect.ValueOf(named[name])); f != nil {
			return Identity{}, &KeyConstructionError{Index: -1, Name: name, Type: f.typ, Path: f.path, Err: f.err}
		}
	}
	enc.buf.WriteByte(')')

	key := enc.buf.String()
	return Identity{key: key, hash: xxhash.Sum64String(key), refs: enc.refs}, nil
}

type encoder struct {
	buf         strings.Builder
	projections map[reflect.Type]func(any) any
	ifaces      []ifaceProjection
	refs        []reflect.Value
	depth       int
}

func (e *encoder) value(v reflect.Value) *keyFault {
	if !v.IsValid() {
		e.buf.WriteString("nil")
		return nil
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > MaxKeyDepth {
		return &keyFault{typ: v.Type(), err: ErrKeyTooDeep}
	}

	if projected, ok := e.project(v); ok {
		e.tag(v.Type())
		e.buf.WriteString("~(")
		if f := e.value(reflect.ValueOf(projected)); f != nil {
			return f
		}
		e.buf.WriteByte(')')
		return nil
	}

	t := v.Type()
	if t.Kind() == reflect.Interface {
		if v.IsNil() {
			e.buf.WriteString("nil")
			return nil
		}
		return e.value(v.Elem())
	}

	e.tag(t)
	switch t.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		e.float(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.buf.WriteByte('(')
		e.float(real(c))
		e.buf.WriteByte(',')
		e.float(imag(c))
		e.buf.WriteByte(')')
	case reflect.String:
		e.buf.WriteString(strconv.Quote(v.String()))
	case reflect.Pointer, reflect.Chan:
		if v.IsNil() {
			e.buf.WriteString("nil")
			return nil
		}
		e.buf.WriteByte('@')
		e.buf.WriteString(strconv.FormatUint(uint64(v.Pointer()), 16))
		e.refs = append(e.refs, v)
	case reflect.Array:
		e.buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if f := e.value(v.Index(i)); f != nil {
				return f.within("[" + strconv.Itoa(i) + "]")
			}
		}
		e.buf.WriteByte(']')
	case reflect.Struct:
		e.buf.WriteByte('{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if f := e.value(v.Field(i)); f != nil {
				return f.within("." + t.Field(i).Name)
			}
		}
		e.buf.WriteByte('}')
	case reflect.Map:
		return e.entries(v)
	default:
		// Slices, funcs and unsafe pointers have no stable identity.
		return &keyFault{typ: t, err: ErrUnhashable}
	}
	return nil
}

// entries projects a map onto the sorted set of its encoded pairs. Nil and
// empty maps of the same type are the same set.
func (e *encoder) entries(v reflect.Value) *keyFault {
	pairs := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		sub := encoder{projections: e.projections, ifaces: e.ifaces, depth: e.depth}
		if f := sub.value(iter.Key()); f != nil {
			return f.within("[key]")
		}
		sub.buf.WriteByte('=')
		if f := sub.value(iter.Value()); f != nil {
			return f.within(fmt.Sprintf("[%v]", iter.Key()))
		}
		pairs = append(pairs, sub.buf.String())
		e.refs = append(e.refs, sub.refs...)
	}
	slices.Sort(pairs)
	e.buf.WriteByte('{')
	e.buf.WriteString(strings.Join(pairs, ","))
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) project(v reflect.Value) (any, bool) {
	// Values reached through unexported fields cannot be handed to user code.
	if !v.CanInterface() {
		return nil, false
	}
	if fn, ok := e.projections[v.Type()]; ok {
		return fn(v.Interface()), true
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	if v.Kind() == reflect.Interface {
		return nil, false
	}
	// Interface arguments arrive unwrapped to their dynamic type, so
	// projections registered for an interface match by implementation.
	for _, p := range e.ifaces {
		if v.Type().Implements(p.typ) {
			return p.fn(v.Interface()), true
		}
	}
	if p, ok := v.Interface().(Projector); ok {
		return p.MemoKey(), true
	}
	return nil, false
}

func (e *encoder) float(f float64) {
	switch {
	case math.IsNaN(f):
		e.buf.WriteString("NaN")
	case f == 0:
		// +0 and -0 compare equal.
		e.buf.WriteByte('0')
	default:
		e.buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func (e *encoder) tag(t reflect.Type) {
	e.buf.WriteString(strconv.FormatUint(typeID(t), 10))
	e.buf.WriteByte(':')
}

var (
	typeIDs    sync.Map // reflect.Type -> uint64
	nextTypeID atomic.Uint64
)

// typeID interns t as a small integer. Type strings are not unique across
// packages, the interned id is.
func typeID(t reflect.Type) uint64 {
	if id, ok := typeIDs.Load(t); ok {
		return id.(uint64)
	}
	id, _ := typeIDs.LoadOrStore(t, nextTypeID.Add(1))
	return id.(uint64)
}
