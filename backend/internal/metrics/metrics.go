// Package metrics exposes Prometheus instruments for toggles, views and
// ownership checks.
//
// Usage:
//
//	metrics.RecordToggle("like", "video", metrics.OutcomeActivated)
//	defer metrics.ObserveView("channel_stats", time.Now())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Toggle outcomes
const (
	OutcomeActivated   = "activated"
	OutcomeDeactivated = "deactivated"
	OutcomeConflict    = "conflict"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

var (
	// ToggleTotal counts toggle attempts by edge kind, target kind and outcome.
	// A conflict is counted once per lost attempt, before the retry.
	ToggleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_toggle_total",
			Help: "Total number of edge toggle attempts",
		},
		[]string{"kind", "target_kind", "outcome"},
	)

	// ViewDuration tracks how long each view takes to compose.
	ViewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_view_duration_seconds",
			Help:    "Duration of view composition in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"view"},
	)

	// OwnershipDeniedTotal counts mutations rejected because the requester is not the owner.
	OwnershipDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_ownership_denied_total",
			Help: "Total number of owner-gated mutations denied",
		},
		[]string{"entity"},
	)
)

// RecordToggle counts one toggle attempt
func RecordToggle(kind, targetKind, outcome string) {
	ToggleTotal.WithLabelValues(kind, targetKind, outcome).Inc()
}

// ObserveView records the time since start against view
func ObserveView(view string, start time.Time) {
	ViewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// RecordOwnershipDenied counts one Forbidden outcome for entity
func RecordOwnershipDenied(entity string) {
	OwnershipDeniedTotal.WithLabelValues(entity).Inc()
}
