package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	errorsTotal     metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	hm := &HTTPMetrics{}

	var err error

	// Buckets: 5ms .. 10s, uploads push the tail up
	hm.requestDuration, err = meter.Float64Histogram(
		"http.server.request_duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, err
	}

	hm.requestsTotal, err = meter.Int64Counter(
		"http.server.requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	hm.errorsTotal, err = meter.Int64Counter(
		"http.server.errors_total",
		metric.WithDescription("Total number of HTTP responses with status >= 500"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	hm.activeRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return hm, nil
}

// RecordRequest records a completed request. route is the chi route pattern,
// not the raw path, to keep cardinality bounded.
func (hm *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if hm == nil || hm.requestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	}

	hm.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	hm.requestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if status >= http.StatusInternalServerError {
		hm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (hm *HTTPMetrics) trackActive(ctx context.Context, delta int64) {
	if hm == nil || hm.activeRequests == nil {
		return
	}
	hm.activeRequests.Add(ctx, delta)
}

// Middleware records latency, traffic, errors and saturation for every request.
func (hm *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		hm.trackActive(ctx, 1)
		defer hm.trackActive(ctx, -1)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(ctx); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		hm.RecordRequest(ctx, r.Method, route, status, time.Since(start))
	})
}
