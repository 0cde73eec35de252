package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookbuddy", Name: "docstore_operations_total", Help: "Number of document store operations by operation and backend."},
		[]string{"op", "backend"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookbuddy", Name: "docstore_errors_total", Help: "Number of failed document store operations by operation and backend."},
		[]string{"op", "backend"},
	)
	RequestTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookbuddy", Name: "request_transitions_total", Help: "Number of request status transitions by target status."},
		[]string{"status"},
	)
	OrphanedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bookbuddy", Name: "orphaned_requests_total", Help: "Number of requests created whose referenced book was not found."},
	)
	SeededCollections = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bookbuddy", Name: "seeded_collections_total", Help: "Number of collections bootstrapped from the embedded seed dataset."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreErrors)
	reg.MustRegister(RequestTransitions)
	reg.MustRegister(OrphanedRequests)
	reg.MustRegister(SeededCollections)
}
