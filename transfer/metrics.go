package transfer

import "time"

// Outcome describes how a transfer was resolved.
type Outcome uint8

const (
	// OutcomeIdentity is a transfer within a single dimension, which leaves the entity where it is.
	OutcomeIdentity Outcome = iota
	// OutcomeFound is a transfer through a portal that already existed.
	OutcomeFound
	// OutcomeBuilt is a transfer through a portal that was built for it.
	OutcomeBuilt
	// OutcomeDirect is a transfer that placed the entity without a portal.
	OutcomeDirect
	// OutcomeFailed is a transfer that failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdentity:
		return "identity"
	case OutcomeFound:
		return "found"
	case OutcomeBuilt:
		return "built"
	case OutcomeDirect:
		return "direct"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// MetricsCollector collects metrics about resolved transfers. Implement it to integrate with a monitoring
// system; the metrics package has a Prometheus implementation.
type MetricsCollector interface {
	// RecordTransfer is called once for every resolved transfer.
	RecordTransfer(outcome Outcome, duration time.Duration)
}

// NopMetrics is a MetricsCollector that discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordTransfer(Outcome, time.Duration) {}
