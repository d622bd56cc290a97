package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps a trace span and batches attribute writes until End.
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// NewSpan starts a span under the global tracer. It returns a no-op span
// when Initialize has not run.
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	if tracer == nil {
		return ctx, &Span{span: trace.SpanFromContext(ctx), startTime: time.Now()}
	}
	ctx, span := tracer.Start(ctx, operationName)
	return ctx, &Span{span: span, startTime: time.Now()}
}

// SetAttribute records an attribute on the span. Writes are batched and
// applied at End.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetStatus sets the span status.
func (s *Span) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// End applies batched attributes and finishes the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// RegistryTracer provides registry-scoped tracing for pool operations.
type RegistryTracer struct {
	registryName string
}

// NewRegistryTracer creates a tracer scoped to one registry instance.
func NewRegistryTracer(registryName string) *RegistryTracer {
	return &RegistryTracer{registryName: registryName}
}

// StartSpan starts a span named after the registry and operation.
func (rt *RegistryTracer) StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := NewSpan(ctx, fmt.Sprintf("registry.%s.%s", rt.registryName, operation))

	span.SetAttribute("registry.name", rt.registryName)
	span.SetAttribute("registry.operation", operation)

	return ctx, span
}

// TracePoolOp traces a single pool operation such as acquire or release.
func (rt *RegistryTracer) TracePoolOp(ctx context.Context, poolID, operation string, fn func() error) error {
	_, span := rt.StartSpan(ctx, operation)
	defer span.End()

	span.SetAttribute("pool.id", poolID)

	err := fn()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttribute("error", true)
		span.SetAttribute("error.message", err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}
