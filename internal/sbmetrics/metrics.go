// Package sbmetrics exposes optional Prometheus instrumentation for the SBM
// MCMC driver via client_golang counters and a gauge. Metrics are purely
// observational: nothing in blockstate/coupling reads them back, so they
// cannot introduce suspension points or change the deterministic outcome of
// a move.
package sbmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the counters/gauges one BlockState (or arena) reports.
// Register it once per process against any prometheus.Registerer; a nil
// *Collector is safe to use (every method becomes a no-op), so instrumenting
// a BlockState is opt-in.
type Collector struct {
	MovesProposed prometheus.Counter
	MovesAccepted prometheus.Counter
	MovesRejected prometheus.Counter
	Entropy       prometheus.Gauge
}

var (
	defaultOnce sync.Once
	defaultColl *Collector
)

// NewCollector builds a Collector with the given namespace (e.g. the arena
// level index) and registers it against reg. Passing a nil reg skips
// registration (useful in tests).
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		MovesProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sbm", Subsystem: namespace, Name: "moves_proposed_total",
			Help: "Number of vertex moves proposed by sample_block.",
		}),
		MovesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sbm", Subsystem: namespace, Name: "moves_accepted_total",
			Help: "Number of vertex moves accepted by the MCMC driver.",
		}),
		MovesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sbm", Subsystem: namespace, Name: "moves_rejected_total",
			Help: "Number of vertex moves rejected by the MCMC driver.",
		}),
		Entropy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sbm", Subsystem: namespace, Name: "entropy",
			Help: "Current description length of the partition.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.MovesProposed, c.MovesAccepted, c.MovesRejected, c.Entropy)
	}
	return c
}

// Default returns a process-wide Collector registered against the default
// registerer, created lazily on first use.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultColl = NewCollector("core", prometheus.DefaultRegisterer)
	})
	return defaultColl
}

func (c *Collector) proposed() {
	if c != nil && c.MovesProposed != nil {
		c.MovesProposed.Inc()
	}
}

// Proposed records a proposed move.
func (c *Collector) Proposed() { c.proposed() }

// Accepted records an accepted move.
func (c *Collector) Accepted() {
	if c != nil && c.MovesAccepted != nil {
		c.MovesAccepted.Inc()
	}
}

// Rejected records a rejected move.
func (c *Collector) Rejected() {
	if c != nil && c.MovesRejected != nil {
		c.MovesRejected.Inc()
	}
}

// SetEntropy publishes the current entropy value.
func (c *Collector) SetEntropy(s float64) {
	if c != nil && c.Entropy != nil {
		c.Entropy.Set(s)
	}
}
