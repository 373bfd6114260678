package metrics

import (
	"time"

	"github.com/oomph-ac/portals/transfer"
	"github.com/prometheus/client_golang/prometheus"
)

var _ transfer.MetricsCollector = (*Collector)(nil)

// Collector is a transfer.MetricsCollector that exports transfer metrics to Prometheus.
type Collector struct {
	transfers *prometheus.CounterVec
	built     prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with the registerer passed. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portals",
			Name:      "transfers_total",
			Help:      "Number of resolved dimension transfers by outcome.",
		}, []string{"outcome"}),
		built: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portals",
			Name:      "portals_built_total",
			Help:      "Number of portals built for transfers.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portals",
			Name:      "resolve_seconds",
			Help:      "Time spent resolving dimension transfers by outcome.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"outcome"}),
	}
	for _, col := range []prometheus.Collector{c.transfers, c.built, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordTransfer ...
func (c *Collector) RecordTransfer(outcome transfer.Outcome, duration time.Duration) {
	label := outcome.String()
	c.transfers.WithLabelValues(label).Inc()
	if outcome == transfer.OutcomeBuilt {
		c.built.Inc()
	}
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}
