package core

// Metrics holds the rolling performance counters for one agent since the last
// daily reset. AverageResponseTime is in milliseconds. Invariants:
// ErrorCount <= DecisionsToday and SuccessRate in [0,1], with SuccessRate
// defined as 1.0 while DecisionsToday is zero.
type Metrics struct {
	DecisionsToday      int     `json:"decisions_today"`
	ErrorCount          int     `json:"error_count"`
	SuccessRate         float64 `json:"success_rate"`
	AverageResponseTime float64 `json:"average_response_time"`
}

// Tracker accumulates Metrics for a single owning agent. It carries no lock:
// the owning agent's Process serialization is the mutual-exclusion boundary,
// and snapshot reads go through the agent's state mutex.
type Tracker struct {
	m Metrics
}

// NewTracker returns a tracker in the post-reset state.
func NewTracker() *Tracker {
	return &Tracker{m: Metrics{SuccessRate: 1.0}}
}

// Record folds one processed message into the counters. elapsedMS is the
// processing latency in milliseconds. The mean is updated incrementally so
// the result is independent of processing order (up to float rounding):
//
//	avg_n = (avg_{n-1}*(n-1) + t_n) / n
func (t *Tracker) Record(elapsedMS float64, success bool) {
	t.m.DecisionsToday++
	if !success {
		t.m.ErrorCount++
	}
	n := float64(t.m.DecisionsToday)
	t.m.SuccessRate = (n - float64(t.m.ErrorCount)) / n
	t.m.AverageResponseTime = (t.m.AverageResponseTime*(n-1) + elapsedMS) / n
}

// Reset zeroes the counters and restores SuccessRate to 1.0. Invoked by an
// external scheduler at the daily boundary.
func (t *Tracker) Reset() {
	t.m = Metrics{SuccessRate: 1.0}
}

// Snapshot returns a value copy of the current counters.
func (t *Tracker) Snapshot() Metrics {
	return t.m
}
