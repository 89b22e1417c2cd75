package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the rendering counters shared by the integrators.
// An explicit object passed by reference, not process-global state, so
// parallel renders and tests each get their own registry.
type Metrics struct {
	AcceptedMutations prometheus.Counter
	TotalMutations    prometheus.Counter
	ZeroRadiancePaths prometheus.Counter
	TotalPaths        prometheus.Counter
	Splats            prometheus.Counter
	PathLength        prometheus.Histogram
}

// NewMetrics creates rendering metrics registered with reg.
// A nil registerer yields working but unregistered metrics, which is what
// tests and library embedders usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AcceptedMutations: factory.NewCounter(prometheus.CounterOpts{
			Name: "render_mutations_accepted_total",
			Help: "Accepted Metropolis mutations",
		}),
		TotalMutations: factory.NewCounter(prometheus.CounterOpts{
			Name: "render_mutations_total",
			Help: "Proposed Metropolis mutations",
		}),
		ZeroRadiancePaths: factory.NewCounter(prometheus.CounterOpts{
			Name: "render_zero_radiance_paths_total",
			Help: "Connection strategies that evaluated to zero radiance",
		}),
		TotalPaths: factory.NewCounter(prometheus.CounterOpts{
			Name: "render_paths_total",
			Help: "Connection strategies evaluated",
		}),
		Splats: factory.NewCounter(prometheus.CounterOpts{
			Name: "render_splats_total",
			Help: "Splat contributions written to the film",
		}),
		PathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "render_path_length",
			Help:    "Length (edges) of evaluated transport paths",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		}),
	}
}
