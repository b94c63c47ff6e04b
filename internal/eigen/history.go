package eigen

// Record is one entry of the optimization history: the parameters the
// optimizer queried, the objective value it received, and the variance when
// the port reported one. Records are never mutated after they are appended.
type Record struct {
	// Evaluation is the 1-based index of this evaluation within the run.
	Evaluation int `json:"evaluation"`

	Params []float64 `json:"params"`
	Value  float64   `json:"value"`

	Variance    float64 `json:"variance,omitempty"`
	HasVariance bool    `json:"-"`

	// GradientPoint marks evaluations issued for a gradient approximation.
	GradientPoint bool `json:"gradientPoint,omitempty"`
}

// history is an append-only evaluation log with a separate cursor tracking
// the best value seen so far. The log itself is never rewritten, so a
// callback holding earlier records cannot observe retroactive changes.
type history struct {
	records []Record
	bestIdx int // index into records, -1 before the first append
}

func newHistory() *history {
	return &history{bestIdx: -1}
}

// append adds a record and advances the best cursor if it improves on the
// best value so far. The caller must hand over ownership of rec.Params.
func (h *history) append(rec Record) {
	h.records = append(h.records, rec)
	if h.bestIdx < 0 || rec.Value < h.records[h.bestIdx].Value {
		h.bestIdx = len(h.records) - 1
	}
}

func (h *history) len() int { return len(h.records) }

// best returns the best record appended so far; ok is false on an empty log.
func (h *history) best() (Record, bool) {
	if h.bestIdx < 0 {
		return Record{}, false
	}
	return h.records[h.bestIdx], true
}

// last returns the most recently appended record.
func (h *history) last() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// snapshot returns the log as a slice. The records are shared, not copied;
// they are immutable by convention.
func (h *history) snapshot() []Record {
	return h.records
}
