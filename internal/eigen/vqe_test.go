package eigen

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// keyedOperator lets a port distinguish auxiliary operators.
type keyedOperator struct {
	dim   int
	value float64
	fail  bool
}

func (o keyedOperator) Dimension() int { return o.dim }

// keyedPort returns the operator's canned value, or the sphere value for
// plain stub operators.
type keyedPort struct {
	spherePort
}

func (p *keyedPort) Estimate(ctx context.Context, ansatz Ansatz, op Operator, params []float64) (Estimate, error) {
	if ko, ok := op.(keyedOperator); ok {
		p.mu.Lock()
		p.calls++
		p.mu.Unlock()
		if ko.fail {
			return Estimate{}, errors.New("measurement failed")
		}
		return Estimate{Value: ko.value}, nil
	}
	return p.spherePort.Estimate(ctx, ansatz, op, params)
}

func TestVQEInitialPointDimensionMismatch(t *testing.T) {
	port := &spherePort{}
	vqe := NewVQE(port, &loopOptimizer{n: 10})
	vqe.InitialPoint = []float64{1, 2}

	_, err := vqe.Compute(context.Background(), stubAnsatz{count: 3}, stubOperator{dim: 8}, nil)

	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("Expected *DimensionMismatchError, got %v", err)
	}
	if dimErr.Expected != 3 || dimErr.Got != 2 {
		t.Errorf("Expected mismatch 3/2, got %d/%d", dimErr.Expected, dimErr.Got)
	}
	if port.callCount() != 0 {
		t.Errorf("Validation must not spend port calls, got %d", port.callCount())
	}
}

func TestVQEDuplicateAuxKeysFailFast(t *testing.T) {
	port := &spherePort{}
	vqe := NewVQE(port, &loopOptimizer{n: 10})

	aux := []AuxOperator{
		{Key: "spin", Operator: stubOperator{dim: 2}},
		{Key: "spin", Operator: stubOperator{dim: 2}},
	}
	_, err := vqe.Compute(context.Background(), stubAnsatz{count: 1, preferred: []float64{1}}, stubOperator{dim: 2}, aux)

	var dupErr *DuplicateKeyError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected *DuplicateKeyError, got %v", err)
	}
	if port.callCount() != 0 {
		t.Errorf("Duplicate keys must be rejected before any port call, got %d", port.callCount())
	}
}

func TestVQEDeterministicRuns(t *testing.T) {
	run := func() *Result {
		vqe := NewVQE(&spherePort{}, &loopOptimizer{n: 20})
		vqe.Seed = 7

		result, err := vqe.Compute(context.Background(), stubAnsatz{count: 3}, stubOperator{dim: 8}, nil)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		return result
	}

	a, b := run(), run()

	if a.OptimalValue != b.OptimalValue {
		t.Errorf("Same seed should give identical optimal values: %v vs %v", a.OptimalValue, b.OptimalValue)
	}
	if !reflect.DeepEqual(a.History, b.History) {
		t.Error("Same seed should give identical evaluation histories")
	}
	if !reflect.DeepEqual(a.OptimalParameters, b.OptimalParameters) {
		t.Error("Same seed should give identical optimal parameters")
	}
}

func TestVQEAuxMeasurementKeepsOrderAndPartialFailures(t *testing.T) {
	port := &keyedPort{}
	vqe := NewVQE(port, &loopOptimizer{n: 5})
	vqe.Concurrency = 3

	aux := []AuxOperator{
		{Key: "number", Operator: keyedOperator{dim: 2, value: 1.5}},
		{Key: "broken", Operator: keyedOperator{dim: 2, fail: true}},
		{Key: "spin", Operator: keyedOperator{dim: 2, value: -0.5}},
	}
	result, err := vqe.Compute(context.Background(), stubAnsatz{count: 1, preferred: []float64{1}}, stubOperator{dim: 2}, aux)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if len(result.Aux) != 3 {
		t.Fatalf("Expected 3 auxiliary values, got %d", len(result.Aux))
	}
	for i, want := range []string{"number", "broken", "spin"} {
		if result.Aux[i].Key != want {
			t.Errorf("Aux value %d should keep key %q, got %q", i, want, result.Aux[i].Key)
		}
	}
	if result.Aux[0].Value != 1.5 || result.Aux[2].Value != -0.5 {
		t.Errorf("Aux values wrong: %v, %v", result.Aux[0].Value, result.Aux[2].Value)
	}
	if result.Aux[1].Err == nil {
		t.Error("Failing operator should carry its error")
	}
	if result.Aux[0].Err != nil || result.Aux[2].Err != nil {
		t.Error("A single failing operator must not poison the batch")
	}
}

func TestVQEVerifyRemeasuresOptimum(t *testing.T) {
	port := &spherePort{}
	vqe := NewVQE(port, &loopOptimizer{n: 5})
	vqe.Verify = true

	result, err := vqe.Compute(context.Background(), stubAnsatz{count: 1, preferred: []float64{2}}, stubOperator{dim: 2}, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// 5 optimizer queries plus the verification call.
	if result.Evaluations != 6 {
		t.Errorf("Expected 6 evaluations including verification, got %d", result.Evaluations)
	}
	want := result.OptimalParameters[0] * result.OptimalParameters[0]
	if result.OptimalValue != want {
		t.Errorf("Verified value should match a fresh measurement: got %v, want %v", result.OptimalValue, want)
	}
}

func TestVQEDiscardHistory(t *testing.T) {
	vqe := NewVQE(&spherePort{}, &loopOptimizer{n: 5})
	vqe.DiscardHistory = true

	result, err := vqe.Compute(context.Background(), stubAnsatz{count: 1, preferred: []float64{1}}, stubOperator{dim: 2}, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.History != nil {
		t.Errorf("History should be dropped, got %d records", len(result.History))
	}
}
