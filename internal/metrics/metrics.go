package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recipestack"

// outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeDenied  = "denied"
)

var (
	GraphqlOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graphql",
		Name:      "operations_total",
		Help:      "GraphQL operations executed, by operation name and outcome.",
	}, []string{"operation", "outcome"})

	GraphqlDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "graphql",
		Name:      "operation_duration_seconds",
		Help:      "GraphQL operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Authentication attempts, by kind (token, refresh, request) and outcome.",
	}, []string{"kind", "outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Domain events handed to the publisher, by event type and outcome.",
	}, []string{"event_type", "outcome"})
)
