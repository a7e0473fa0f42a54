// Package metrics exposes simulation counters in Prometheus form.
package metrics

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "faultsim"

// Metrics holds the simulation counters, registered on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	Runs              *prometheus.CounterVec
	GateEvaluations   prometheus.Counter
	EarlyTerminations prometheus.Counter
	UnresolvedOutputs prometheus.Counter
	FaultsSimulated   prometheus.Counter
	FaultsDetected    prometheus.Counter
	PropagationDepth  prometheus.Histogram
}

// New creates and registers the simulation counters
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulation runs by fault mode.",
		}, []string{"mode"}),
		GateEvaluations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_evaluations_total",
			Help:      "Gates evaluated across all runs.",
		}),
		EarlyTerminations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "early_terminations_total",
			Help:      "Runs that resolved every output before seeding all inputs.",
		}),
		UnresolvedOutputs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_outputs_total",
			Help:      "Primary outputs left at U after a run.",
		}),
		FaultsSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_simulated_total",
			Help:      "Single faults simulated by fault list runs.",
		}),
		FaultsDetected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_detected_total",
			Help:      "Single faults whose effect reached a primary output.",
		}),
		PropagationDepth: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "propagation_depth",
			Help:      "Deepest propagation stack seen per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// ObserveRun records the outcome of one simulation run. m may be nil.
func (m *Metrics) ObserveRun(faultEnabled bool, evaluations, depth, unresolved int, early bool) {
	if m == nil {
		return
	}
	mode := "good"
	if faultEnabled {
		mode = "fault"
	}
	m.Runs.WithLabelValues(mode).Inc()
	m.GateEvaluations.Add(float64(evaluations))
	m.UnresolvedOutputs.Add(float64(unresolved))
	m.PropagationDepth.Observe(float64(depth))
	if early {
		m.EarlyTerminations.Inc()
	}
}

// ObserveFault records one fault of a fault list run. m may be nil.
func (m *Metrics) ObserveFault(detected bool) {
	if m == nil {
		return
	}
	m.FaultsSimulated.Inc()
	if detected {
		m.FaultsDetected.Inc()
	}
}

// WriteText writes every metric in the Prometheus text exposition format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
