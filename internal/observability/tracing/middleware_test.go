package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("laostream")
	t.Cleanup(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		tracer = otel.Tracer("laostream")
	})
	return exporter, tp
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter, tp := setupExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/rentals", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "POST /rentals" {
		t.Errorf("span name = %q, want POST /rentals", span.Name)
	}

	got := map[string]any{}
	for _, attr := range span.Attributes {
		got[string(attr.Key)] = attr.Value.AsInterface()
	}
	if got["http.method"] != "POST" {
		t.Errorf("http.method = %v, want POST", got["http.method"])
	}
	if got["http.path"] != "/rentals" {
		t.Errorf("http.path = %v, want /rentals", got["http.path"])
	}
	if got["http.status_code"] != int64(201) {
		t.Errorf("http.status_code = %v, want 201", got["http.status_code"])
	}
	if _, ok := got["error"]; ok {
		t.Error("error attribute set on a 2xx response")
	}
}

func TestMiddleware_MarksServerErrors(t *testing.T) {
	exporter, tp := setupExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rentals/txn-1", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	found := false
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == "error" && attr.Value.AsBool() {
			found = true
		}
	}
	if !found {
		t.Error("expected error attribute on 5xx response")
	}
}

func TestMiddleware_AddsTraceIDToResponse(t *testing.T) {
	setupExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/movies", nil))

	traceID := rr.Header().Get("X-Trace-Id")
	if len(traceID) != 32 {
		t.Errorf("X-Trace-Id = %q, want 32 hex characters", traceID)
	}
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	exporter, tp := setupExporter(t)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	})

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s, want the propagated parent trace id", got)
	}
}
