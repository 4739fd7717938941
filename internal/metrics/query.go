package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Catalog query Prometheus metrics.
var (
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "query_requests_total",
			Help:      "Total number of catalog operations",
		},
		[]string{"op", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookstore",
			Name:      "query_duration_seconds",
			Help:      "Catalog operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	QueryDocumentsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookstore",
			Name:      "query_documents_returned",
			Help:      "Documents returned per catalog read",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"op"},
	)

	SeedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookstore",
			Name:      "seed_documents_total",
			Help:      "Documents inserted by the seeder",
		},
		[]string{"source"}, // "fixtures" / "generated"
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers catalog metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryDocumentsReturned)
	prometheus.MustRegister(SeedDocumentsTotal)
	queryMetricsRegistered = true
}

// ObserveQuery records one finished catalog operation.
func ObserveQuery(op string, start time.Time, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	QueryRequestsTotal.WithLabelValues(op, status).Inc()
	QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
