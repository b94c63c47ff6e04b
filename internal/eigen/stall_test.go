package eigen

import "testing"

func TestStallMonitorTripsAfterPatience(t *testing.T) {
	m := NewStallMonitor(3, 0.01)

	if m.Update(10) {
		t.Error("First value should never trip the monitor")
	}
	if m.Update(5) {
		t.Error("A 50% improvement is progress")
	}

	// Three consecutive stale values.
	if m.Update(4.999) || m.Update(5.0) {
		t.Error("Monitor tripped before patience ran out")
	}
	if !m.Update(4.998) {
		t.Error("Monitor should trip after 3 stale evaluations")
	}
}

func TestStallMonitorResetsOnProgress(t *testing.T) {
	m := NewStallMonitor(2, 0.01)

	m.Update(10)
	m.Update(9.999) // stale
	if m.Update(8) { // 20% improvement resets the counter
		t.Error("Progress should reset the stale counter")
	}
	if m.Update(7.999) {
		t.Error("One stale evaluation is below patience")
	}

	if m.BestValue() != 7.999 {
		t.Errorf("BestValue = %v, want 7.999", m.BestValue())
	}
}

func TestStallMonitorProgressFromZero(t *testing.T) {
	m := NewStallMonitor(2, 0.01)

	m.Update(0)
	// Any decrease from a zero reference counts absolutely; the relative
	// form would divide by zero and silently mark it stale.
	if m.Update(-0.5) {
		t.Error("A decrease from 0 is progress")
	}
	if m.Update(-0.501) || m.staleCount != 1 {
		t.Errorf("Tiny decrease should be stale, staleCount = %d", m.staleCount)
	}
}

func TestStallMonitorCallbackCancels(t *testing.T) {
	m := NewStallMonitor(1, 0.01)
	cancelled := false
	cb := m.Callback(func() { cancelled = true })

	cb(1, nil, 10, EvalMeta{})
	if cancelled {
		t.Fatal("Callback cancelled too early")
	}
	cb(2, nil, 10, EvalMeta{})
	if !cancelled {
		t.Error("Callback should cancel once the monitor trips")
	}
}
