// Package metrics exposes Prometheus collectors for the ingestion pipeline
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts ingested files by detected format and outcome.
	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartola_files_processed_total",
			Help: "Total number of statement files processed",
		},
		[]string{"format", "outcome"},
	)

	// RowsDropped counts rows discarded while cleaning.
	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartola_rows_dropped_total",
			Help: "Rows dropped for missing or invalid date, amount or type",
		},
		[]string{"format"},
	)

	// RowsCategorized counts categorized transactions by how the category was assigned.
	RowsCategorized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartola_rows_categorized_total",
			Help: "Transactions categorized, by rule kind",
		},
		[]string{"rule_kind"},
	)

	// RecategorizeFailures counts rows a bulk recategorization could not update.
	RecategorizeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartola_recategorize_failures_total",
			Help: "Rows that failed to update during bulk recategorization",
		},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartola_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartola_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Middleware records request counts and durations labelled by the matched
// chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
