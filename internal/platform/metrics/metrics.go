// internal/platform/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Set bundles the storefront engine counters. A nil *Set is a valid no-op
// receiver so wiring metrics stays optional.
type Set struct {
	CartOps          *prometheus.CounterVec
	GatewayErrors    *prometheus.CounterVec
	DriftResolutions prometheus.Counter
	DriftSkipped     prometheus.Counter
}

// NewSet registers the engine collectors on reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminaire",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart mutation operations by operation and result.",
		}, []string{"op", "result"}),
		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luminaire",
			Subsystem: "commerce",
			Name:      "gateway_errors_total",
			Help:      "Commerce gateway failures by normalized category.",
		}, []string{"category"}),
		DriftResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "luminaire",
			Subsystem: "cart",
			Name:      "drift_resolutions_total",
			Help:      "Completed session drift resolutions.",
		}),
		DriftSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "luminaire",
			Subsystem: "cart",
			Name:      "drift_skipped_total",
			Help:      "Drift resolutions skipped on pristine sessions.",
		}),
	}
	reg.MustRegister(s.CartOps, s.GatewayErrors, s.DriftResolutions, s.DriftSkipped)
	return s
}

// CartOp records one mutation outcome. Safe on a nil Set.
func (s *Set) CartOp(op, result string) {
	if s == nil {
		return
	}
	s.CartOps.WithLabelValues(op, result).Inc()
}

// GatewayError records one normalized gateway failure. Safe on a nil Set.
func (s *Set) GatewayError(category string) {
	if s == nil {
		return
	}
	s.GatewayErrors.WithLabelValues(category).Inc()
}

// DriftResolved records a completed drift resolution. Safe on a nil Set.
func (s *Set) DriftResolved() {
	if s == nil {
		return
	}
	s.DriftResolutions.Inc()
}

// DriftSkippedPristine records a pristine-session no-op. Safe on a nil Set.
func (s *Set) DriftSkippedPristine() {
	if s == nil {
		return
	}
	s.DriftSkipped.Inc()
}
