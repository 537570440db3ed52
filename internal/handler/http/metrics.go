package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"laostream/internal/handler/http/pathutil"
	"laostream/internal/handler/http/responsewriter"
	"laostream/internal/observability/metrics"
)

// MetricsMiddleware records HTTP request metrics including duration and
// status codes. Paths are normalized to prevent label cardinality explosion
// from id-containing routes (e.g. /movies/123 -> /movies/:id).
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		normalizedPath := pathutil.NormalizePath(r.URL.Path)

		rw := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		status := strconv.Itoa(rw.StatusCode())
		metrics.RecordHTTPRequest(r.Method, normalizedPath, status, duration)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
