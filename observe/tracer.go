package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// FuncMeta describes a memoized function for telemetry purposes.
type FuncMeta struct {
	ID        string // Fully qualified ID (namespace.name or just name)
	Namespace string // Function namespace (may be empty)
	Name      string // Function name (required)
	Version   string // Function version (optional)
}

// SpanName returns the deterministic span name for this function.
// Format: memo.call.<namespace>.<name> or memo.call.<name>
func (m FuncMeta) SpanName() string {
	return "memo.call." + m.FuncID()
}

// FuncID returns the fully qualified function identifier.
// If ID is set, returns it. Otherwise constructs from namespace and name.
func (m FuncMeta) FuncID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Validate reports whether the metadata can label telemetry.
func (m FuncMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingFuncName
	}
	return nil
}

func (m FuncMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("func.id", m.FuncID()),
		attribute.String("func.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("func.namespace", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with per-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one invocation of the function.
	StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with function metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("memo.error", false))
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("func.version", meta.Version))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("memo.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
