// Package telemetry wraps CDP request dispatch with an OpenTelemetry span
// per call. Grounded on vango's pkg/middleware/otel.go (TracerName config,
// Filter/AttributeExtractor hooks, span-per-call with status set from the
// handler's error return).
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "corten-devtools"

// Config configures the dispatch tracer.
type Config struct {
	// TracerName names the otel tracer (default "corten-devtools").
	TracerName string

	// Filter, when non-nil, decides whether a given method is traced.
	// Returning false skips span creation entirely.
	Filter func(domain, method string) bool
}

// Tracer wraps dispatch with spans.
type Tracer struct {
	tracer trace.Tracer
	filter func(domain, method string) bool
}

// New builds a Tracer from cfg, resolving the tracer via the global otel
// TracerProvider (a no-op provider until the host process configures one).
func New(cfg Config) *Tracer {
	name := cfg.TracerName
	if name == "" {
		name = defaultTracerName
	}
	return &Tracer{
		tracer: otel.Tracer(name),
		filter: cfg.Filter,
	}
}

// Trace starts a span named "<domain>.<method>", runs fn, and records the
// error (if any) on the span before ending it.
func (t *Tracer) Trace(ctx context.Context, domain, method string, fn func(context.Context) error) error {
	if t.filter != nil && !t.filter(domain, method) {
		return fn(ctx)
	}

	ctx, span := t.tracer.Start(ctx, domain+"."+method,
		trace.WithAttributes(
			attribute.String("cdp.domain", domain),
			attribute.String("cdp.method", method),
		),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}
