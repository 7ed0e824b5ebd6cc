// Package api exposes the experiment harness over HTTP: Prometheus metrics
// for long sweeps and a JSON endpoint serving the latest aggregated results.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

// Metrics holds all Prometheus metrics for the harness. It implements
// experiment.Observer so a running sweep feeds it directly.
type Metrics struct {
	// Trial metrics
	TrialsStarted   prometheus.Counter
	TrialsCompleted prometheus.Counter
	TrialsConverged prometheus.Counter

	// Protocol metrics
	ConvergenceRounds prometheus.Histogram
	MessagesPerTrial  prometheus.Histogram
	AuthorityQueries  prometheus.Counter

	// Harness metrics
	TrialsInFlight prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered against reg with the
// given namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TrialsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_started_total",
			Help:      "Total number of reconciliation trials started",
		}),
		TrialsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_completed_total",
			Help:      "Total number of reconciliation trials completed",
		}),
		TrialsConverged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_converged_total",
			Help:      "Total number of trials that converged within the round budget",
		}),
		ConvergenceRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "convergence_rounds",
			Help:      "Rounds to convergence for converged trials",
			Buckets:   prometheus.LinearBuckets(1, 2, 25),
		}),
		MessagesPerTrial: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "messages_per_trial",
			Help:      "Total protocol messages emitted per trial",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
		}),
		AuthorityQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authority_queries_total",
			Help:      "Total ledger authority queries across all trials",
		}),
		TrialsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trials_in_flight",
			Help:      "Trials currently queued or running",
		}),
	}
}

// TrialStarted records a trial dispatch.
func (m *Metrics) TrialStarted() {
	m.TrialsStarted.Inc()
	m.TrialsInFlight.Inc()
}

// TrialFinished records the outcome of a completed trial.
func (m *Metrics) TrialFinished(stats reconcile.Stats) {
	m.TrialsCompleted.Inc()
	m.TrialsInFlight.Dec()
	m.MessagesPerTrial.Observe(float64(stats.TotalMessages))
	m.AuthorityQueries.Add(float64(stats.AuthorityQueries))

	if stats.Converged && stats.ConvergenceRound != nil {
		m.TrialsConverged.Inc()
		m.ConvergenceRounds.Observe(float64(*stats.ConvergenceRound))
	}
}
