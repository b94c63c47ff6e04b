package eigen

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// AuxOperator is a named observable to measure at the optimal parameters
// after convergence. Keys must be unique within a batch.
type AuxOperator struct {
	Key      string
	Operator Operator
}

// AuxValue is the measured (value, variance) pair for one auxiliary
// operator. A per-key evaluation failure is recorded in Err instead of
// aborting the batch, so partial results remain usable.
type AuxValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`

	Variance    float64 `json:"variance,omitempty"`
	HasVariance bool    `json:"-"`

	Err error `json:"-"`
}

// evaluateAux measures each auxiliary operator once at the optimal
// parameters. This is a pure post-hoc measurement step: no optimization
// happens here and each operator costs exactly one port call. Output order
// matches input order. The per-operator calls are mutually independent and
// run concurrently when concurrency > 1.
func evaluateAux(ctx context.Context, port EvaluationPort, ansatz Ansatz, params []float64, ops []AuxOperator, concurrency int) ([]AuxValue, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	if err := validateAuxKeys(ops); err != nil {
		return nil, err
	}

	values := make([]AuxValue, len(ops))
	if concurrency <= 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, op := range ops {
		g.Go(func() error {
			values[i] = measureOne(gctx, port, ansatz, op, params)
			return nil
		})
	}
	g.Wait()

	return values, nil
}

// validateAuxKeys rejects batches with repeated keys.
func validateAuxKeys(ops []AuxOperator) error {
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if _, dup := seen[op.Key]; dup {
			return &DuplicateKeyError{Key: op.Key}
		}
		seen[op.Key] = struct{}{}
	}
	return nil
}

func measureOne(ctx context.Context, port EvaluationPort, ansatz Ansatz, op AuxOperator, params []float64) AuxValue {
	est, err := port.Estimate(ctx, ansatz, op.Operator, append([]float64(nil), params...))
	if err != nil {
		slog.Warn("auxiliary operator evaluation failed", "key", op.Key, "error", err)
		return AuxValue{Key: op.Key, Err: err}
	}
	return AuxValue{
		Key:         op.Key,
		Value:       est.Value,
		Variance:    est.Variance,
		HasVariance: est.HasVariance,
	}
}
