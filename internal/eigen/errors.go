package eigen

import "fmt"

// DimensionMismatchError reports a parameter vector whose length disagrees
// with the ansatz's parameter count. It is raised before any Evaluation
// Port call is made.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: ansatz has %d parameters, got %d", e.Expected, e.Got)
}

func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}

// EvaluationError reports a mid-run Evaluation Port failure. It carries the
// offending parameter vector and the evaluation index so the failure can be
// reproduced; the run it aborted keeps its partial history for inspection.
type EvaluationError struct {
	Evaluation int
	Params     []float64
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation %d failed: %v", e.Evaluation, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func (e *EvaluationError) Is(target error) bool {
	_, ok := target.(*EvaluationError)
	return ok
}

// DuplicateKeyError reports a repeated key in an auxiliary-operator batch.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate operator key: %q", e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool {
	_, ok := target.(*DuplicateKeyError)
	return ok
}
