// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	intentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workflowx",
			Name:      "intent_classifications_total",
			Help:      "Messages classified, by intent and deciding tier.",
		},
		[]string{"intent", "tier"},
	)

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workflowx",
			Name:      "dispatch_total",
			Help:      "Dispatched actions, by intent and outcome.",
		},
		[]string{"intent", "outcome"},
	)

	dialogTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workflowx",
			Name:      "dialog_transitions_total",
			Help:      "Email dialog state transitions.",
		},
		[]string{"from", "to"},
	)

	collaboratorLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "workflowx",
			Name:      "collaborator_latency_seconds",
			Help:      "Latency of calls to external collaborators.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collaborator"},
	)
)

// Dispatch outcomes
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeNeedsInput  = "needs_input"
	OutcomeUnavailable = "unavailable"
)

func IntentClassified(intent, tier string) {
	intentTotal.WithLabelValues(intent, tier).Inc()
}

func Dispatched(intent, outcome string) {
	dispatchTotal.WithLabelValues(intent, outcome).Inc()
}

func DialogTransition(from, to string) {
	dialogTransitions.WithLabelValues(from, to).Inc()
}

// ObserveSince records the time elapsed since start for a collaborator.
// Use as: defer metrics.ObserveSince("slack", time.Now())
func ObserveSince(collaborator string, start time.Time) {
	collaboratorLatency.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
}
