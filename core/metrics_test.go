package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerInitialState(t *testing.T) {
	tr := NewTracker()
	m := tr.Snapshot()

	assert.Equal(t, 0, m.DecisionsToday)
	assert.Equal(t, 0, m.ErrorCount)
	assert.Equal(t, 1.0, m.SuccessRate)
	assert.Equal(t, 0.0, m.AverageResponseTime)
}

func TestTrackerAllSuccesses(t *testing.T) {
	tr := NewTracker()
	tr.Record(100, true)
	tr.Record(200, true)
	tr.Record(300, true)

	m := tr.Snapshot()
	assert.Equal(t, 3, m.DecisionsToday)
	assert.Equal(t, 0, m.ErrorCount)
	assert.Equal(t, 1.0, m.SuccessRate)
	assert.InDelta(t, 200.0, m.AverageResponseTime, 1e-9)
}

func TestTrackerMixedOutcomes(t *testing.T) {
	tr := NewTracker()
	tr.Record(100, true)
	tr.Record(200, true)
	tr.Record(300, true)
	tr.Record(50, false)

	m := tr.Snapshot()
	assert.Equal(t, 4, m.DecisionsToday)
	assert.Equal(t, 1, m.ErrorCount)
	assert.Equal(t, 0.75, m.SuccessRate)
	assert.InDelta(t, 162.5, m.AverageResponseTime, 1e-9)
}

func TestTrackerMeanIsOrderIndependent(t *testing.T) {
	a := NewTracker()
	b := NewTracker()
	samples := []float64{12.5, 830.1, 4.2, 99.9, 250.0}

	for _, s := range samples {
		a.Record(s, true)
	}
	for i := len(samples) - 1; i >= 0; i-- {
		b.Record(samples[i], true)
	}

	assert.InDelta(t, a.Snapshot().AverageResponseTime, b.Snapshot().AverageResponseTime, 1e-9)
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Record(100, false)
	tr.Record(200, true)

	tr.Reset()

	m := tr.Snapshot()
	assert.Equal(t, 0, m.DecisionsToday)
	assert.Equal(t, 0, m.ErrorCount)
	assert.Equal(t, 1.0, m.SuccessRate)
	assert.Equal(t, 0.0, m.AverageResponseTime)
}

func TestTrackerInvariants(t *testing.T) {
	tr := NewTracker()
	outcomes := []bool{true, false, false, true, false, true, true}

	for i, ok := range outcomes {
		tr.Record(float64(i*10), ok)
		m := tr.Snapshot()
		assert.LessOrEqual(t, m.ErrorCount, m.DecisionsToday)
		assert.GreaterOrEqual(t, m.SuccessRate, 0.0)
		assert.LessOrEqual(t, m.SuccessRate, 1.0)
	}
}
