// Package metrics holds the service-wide Prometheus collectors. Collectors
// are created at package load so domain code can increment them freely;
// Register hooks them into the default registry at startup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factify",
			Name:      "access_events_recorded_total",
			Help:      "Total number of access events written to the store.",
		},
		[]string{"access_type"},
	)

	RecorderFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "factify",
			Name:      "access_recorder_failures_total",
			Help:      "Total number of access-event writes that failed.",
		},
	)

	SearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "factify",
			Name:      "searches_total",
			Help:      "Total number of catalog searches served.",
		},
	)

	RecomputeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "factify",
			Name:      "incentive_recompute_runs_total",
			Help:      "Total number of per-owner incentive recomputations.",
		},
		[]string{"outcome"},
	)
)

// Register adds the collectors to the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(EventsRecorded, RecorderFailures, SearchesTotal, RecomputeRuns)
}
