// Package tracing provides OpenTelemetry tracing for HTTP request handling.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the laostream application.
var tracer = otel.Tracer("laostream")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "rental.create")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
