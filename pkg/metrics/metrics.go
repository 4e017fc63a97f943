package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry through promauto.

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// OperationsTotal counts collection operations by kind and outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorindex_operations_total",
			Help: "Total number of collection operations processed",
		},
		[]string{"collection", "op", "status"},
	)

	// SearchDuration measures query latency, from microseconds (small
	// collections) to tens of milliseconds (large ef on big graphs).
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorindex_search_duration_seconds",
			Help:    "Duration of vector searches in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"collection"},
	)

	// TotalVectors tracks the live record count of each collection.
	TotalVectors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kektorindex_vectors_total",
			Help: "Total number of indexed vectors",
		},
		[]string{"collection"},
	)

	// EmbeddingDuration measures calls to the external embedding service.
	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorindex_embedding_duration_seconds",
			Help:    "Duration of embedding requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "status"},
	)
)

// Status maps an error to the status label value.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// Forget drops every series of a collection, used when it is dropped.
func Forget(collection string) {
	OperationsTotal.DeletePartialMatch(prometheus.Labels{"collection": collection})
	SearchDuration.DeletePartialMatch(prometheus.Labels{"collection": collection})
	TotalVectors.DeleteLabelValues(collection)
}
