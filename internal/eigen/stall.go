package eigen

import (
	"log/slog"
	"math"
)

// StallMonitor is a caller-side progress watchdog. The driver itself never
// second-guesses the optimizer's stopping rule, so callers that want to cut
// off a stalled noisy run attach this as their callback and cancel the
// run's context when it trips. Cancellation is then picked up at the next
// port boundary like any other.
type StallMonitor struct {
	// Patience is the number of evaluations without significant
	// improvement before the monitor trips.
	Patience int

	// Threshold is the minimum relative improvement counted as progress,
	// e.g. 0.001 for 0.1%.
	Threshold float64

	bestValue       float64
	lastSignificant float64
	staleCount      int
	started         bool
}

// NewStallMonitor creates a monitor that trips after patience evaluations
// with less than threshold relative improvement.
func NewStallMonitor(patience int, threshold float64) *StallMonitor {
	return &StallMonitor{
		Patience:        patience,
		Threshold:       threshold,
		bestValue:       math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Callback returns an eigen.Callback that feeds the monitor and calls stop
// once progress stalls. stop is typically a context.CancelFunc; it may be
// invoked more than once.
func (m *StallMonitor) Callback(stop func()) Callback {
	return func(evaluation int, _ []float64, value float64, _ EvalMeta) {
		if m.Update(value) {
			slog.Info("optimization stalled, cancelling run",
				"evaluation", evaluation,
				"stale_count", m.staleCount,
				"best_value", m.bestValue,
			)
			stop()
		}
	}
}

// Update records a new objective value and reports whether the monitor has
// tripped.
func (m *StallMonitor) Update(value float64) bool {
	if value < m.bestValue {
		m.bestValue = value
	}

	if !m.started {
		m.started = true
		m.lastSignificant = value
		return false
	}

	// Relative improvement, falling back to an absolute comparison when the
	// reference value is zero (the relative form would be NaN there).
	improvement := m.lastSignificant - value
	if denom := math.Abs(m.lastSignificant); denom > 0 {
		improvement /= denom
	}
	if improvement >= m.Threshold {
		m.lastSignificant = value
		m.staleCount = 0
		return false
	}

	m.staleCount++
	return m.staleCount >= m.Patience
}

// BestValue returns the best objective value seen so far.
func (m *StallMonitor) BestValue() float64 { return m.bestValue }

// Reset clears the monitor for reuse across runs.
func (m *StallMonitor) Reset() {
	m.bestValue = math.Inf(1)
	m.lastSignificant = math.Inf(1)
	m.staleCount = 0
	m.started = false
}
