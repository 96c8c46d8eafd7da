package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Store operation statuses.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid"
	StatusError    = "error"
)

// Storage Prometheus metrics.
var (
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microblog",
			Name:      "store_operations_total",
			Help:      "Total number of storage operations",
		},
		[]string{"backend", "entity", "op", "status"},
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microblog",
			Name:      "store_operation_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "entity", "op"},
	)

	StoreResultSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microblog",
			Name:      "store_result_size",
			Help:      "Number of entities returned by list and search operations",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"backend", "entity", "op"},
	)
)

var registerStoreOnce sync.Once

// RegisterStoreMetrics registers storage metrics with the default registry.
// Safe to call more than once.
func RegisterStoreMetrics() {
	registerStoreOnce.Do(func() {
		prometheus.MustRegister(StoreOperationsTotal)
		prometheus.MustRegister(StoreOperationDuration)
		prometheus.MustRegister(StoreResultSize)
	})
}
