package store

import (
	"fmt"
	"time"

	"github.com/qbitwise/varqe/internal/eigen"
	"github.com/qbitwise/varqe/internal/sim"
)

// RunConfig holds the configuration of an eigensolver run (persisted copy).
// It lives here rather than in the server package to avoid import cycles.
type RunConfig struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"` // vqe, qaoa, vqd

	// Problem selection: either a named preset or explicit Pauli terms.
	Preset string     `json:"preset,omitempty" yaml:"preset,omitempty"`
	Qubits int        `json:"qubits" yaml:"qubits"`
	Terms  []sim.Term `json:"terms,omitempty" yaml:"terms,omitempty"`
	Field  float64    `json:"field,omitempty" yaml:"field,omitempty"`

	// Ansatz and optimizer settings.
	Layers         int     `json:"layers" yaml:"layers"`
	Reps           int     `json:"reps,omitempty" yaml:"reps,omitempty"`
	Optimizer      string  `json:"optimizer" yaml:"optimizer"`
	Gradient       string  `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	MaxIters       int     `json:"maxIters" yaml:"maxIters"`
	PopSize        int     `json:"popSize" yaml:"popSize"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Shots          int     `json:"shots,omitempty" yaml:"shots,omitempty"`
	MaxEvaluations int     `json:"maxEvaluations,omitempty" yaml:"maxEvaluations,omitempty"`
	Eigenpairs     int     `json:"eigenpairs,omitempty" yaml:"eigenpairs,omitempty"`
	Beta           float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
}

// RunRecord is the persisted outcome of one eigensolver run: every found
// eigenpair plus enough configuration to reproduce it. All fields are
// serialized to JSON.
type RunRecord struct {
	RunID     string            `json:"runId"`
	Config    RunConfig         `json:"config"`
	Status    string            `json:"status"`
	Pairs     []EigenpairRecord `json:"eigenpairs"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Error     string            `json:"error,omitempty"`
}

// EigenpairRecord is one persisted eigenpair of a run.
type EigenpairRecord struct {
	Level       int         `json:"level"`
	Value       float64     `json:"value"`
	Params      []float64   `json:"params"`
	Evaluations int         `json:"evaluations"`
	Status      string      `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	Aux         []AuxRecord `json:"aux,omitempty"`
}

// AuxRecord is one persisted auxiliary observable value.
type AuxRecord struct {
	Key      string  `json:"key"`
	Value    float64 `json:"value"`
	Variance float64 `json:"variance,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// RunInfo is RunRecord metadata without parameter payloads, for listings.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Algorithm string    `json:"algorithm"`
	Status    string    `json:"status"`
	Levels    int       `json:"levels"`
	BestValue float64   `json:"bestValue"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEigenpairRecord converts a solver result into its persisted form.
func NewEigenpairRecord(result *eigen.Result) EigenpairRecord {
	rec := EigenpairRecord{
		Level:       result.Level,
		Value:       result.OptimalValue,
		Params:      append([]float64(nil), result.OptimalParameters...),
		Evaluations: result.Evaluations,
		Status:      string(result.Status),
		Reason:      result.Reason,
	}
	for _, aux := range result.Aux {
		ar := AuxRecord{Key: aux.Key, Value: aux.Value, Variance: aux.Variance}
		if aux.Err != nil {
			ar.Error = aux.Err.Error()
		}
		rec.Aux = append(rec.Aux, ar)
	}
	return rec
}

// ToInfo converts a full RunRecord to listing metadata.
func (r *RunRecord) ToInfo() RunInfo {
	info := RunInfo{
		RunID:     r.RunID,
		Algorithm: r.Config.Algorithm,
		Status:    r.Status,
		Levels:    len(r.Pairs),
		Timestamp: r.EndTime,
	}
	if len(r.Pairs) > 0 {
		info.BestValue = r.Pairs[0].Value
	}
	return info
}

// Validate checks that the record has valid data before persisting.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Config.Algorithm == "" {
		return &ValidationError{Field: "Config.Algorithm", Reason: "cannot be empty"}
	}
	if r.Status == "" {
		return &ValidationError{Field: "Status", Reason: "cannot be empty"}
	}
	if r.StartTime.IsZero() {
		return &ValidationError{Field: "StartTime", Reason: "cannot be zero"}
	}
	for i, pair := range r.Pairs {
		if pair.Level != i {
			return &ValidationError{Field: "Pairs", Reason: fmt.Sprintf("level %d at index %d, levels must be ordered", pair.Level, i)}
		}
		if len(pair.Params) == 0 {
			return &ValidationError{Field: "Pairs", Reason: fmt.Sprintf("level %d has no parameters", pair.Level)}
		}
	}
	return nil
}

// ValidationError represents a run-record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
