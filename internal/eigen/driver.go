package eigen

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/qbitwise/varqe/internal/opt"
)

// PenaltyFunc augments the base expectation value with an extra objective
// term (the deflation overlap penalty). It reports how many Evaluation Port
// calls it spent so the driver can enforce its evaluation ceiling.
type PenaltyFunc func(ctx context.Context, params []float64) (value float64, portCalls int, err error)

// Driver runs the iterative optimization loop: it wraps the Evaluation Port
// in objective and gradient closures for the optimizer, records every
// evaluation in an append-only history, invokes the caller's callback, and
// enforces cancellation and the hard evaluation ceiling at port boundaries.
//
// The loop is single-threaded by design: the optimizer's next query depends
// on the previous answer. The only concurrency is within one gradient
// approximation, whose 2p perturbed evaluations are independent and may be
// dispatched in parallel when Concurrency > 1; their history records and
// callbacks are still emitted in plan order.
type Driver struct {
	Port      EvaluationPort
	Optimizer opt.Optimizer

	// Gradient supplies the approximation strategy used to build a gradient
	// closure for gradient-based optimizers. Nil means no gradient closure
	// is offered; if the port returns analytic gradients they are used
	// regardless.
	Gradient GradientStrategy

	// Callback, when set, observes every objective and gradient evaluation.
	Callback Callback

	// MaxEvaluations is a hard ceiling on total Evaluation Port calls,
	// guarding against runaway noisy objectives. Zero means no ceiling
	// beyond what the optimizer requests.
	MaxEvaluations int

	// Concurrency bounds parallel port calls within one gradient batch.
	// Values <= 1 keep everything sequential.
	Concurrency int

	// Penalty, when set, is added to the base expectation value on every
	// objective evaluation (deflation).
	Penalty PenaltyFunc

	// Level tags evaluations with their excitation level for callbacks.
	Level int
}

// runOutput is the raw driver outcome handed to the result aggregator.
type runOutput struct {
	bestParams  []float64
	bestValue   float64
	evaluations int
	history     *history
	optimizer   string
	reason      string
	status      Status
}

// runAbort is panicked through the optimizer to unwind the loop on
// cancellation, ceiling, or port failure. Run recovers it.
type runAbort struct {
	err    *EvaluationError // non-nil for port failures
	reason string           // set for interruptions
}

// Run executes one optimization against the operator. On an Evaluation Port
// failure it returns a non-nil *EvaluationError together with an output
// whose history covers everything recorded before the failure; no optimizer
// state is carried over. Cancellation and the evaluation ceiling are not
// errors: they yield the best result found so far with status Interrupted.
func (d *Driver) Run(ctx context.Context, ansatz Ansatz, op Operator, x0, lower, upper []float64) (out runOutput, err error) {
	hist := newHistory()
	portCalls := 0
	out.optimizer = d.Optimizer.Name()
	out.history = hist

	defer func() {
		if r := recover(); r != nil {
			ab, ok := r.(runAbort)
			if !ok {
				panic(r)
			}
			out.evaluations = portCalls
			if ab.err != nil {
				out.status = StatusFailed
				out.reason = ab.err.Error()
				err = ab.err
				return
			}
			out.status = StatusInterrupted
			out.reason = ab.reason
			if best, found := hist.best(); found {
				out.bestParams = append([]float64(nil), best.Params...)
				out.bestValue = best.Value
			}
			slog.Info("optimization interrupted",
				"reason", ab.reason,
				"evaluations", portCalls,
				"best_value", out.bestValue,
			)
		}
	}()

	evaluate := func(x []float64, gradientPoint bool) float64 {
		d.checkBoundary(ctx, portCalls)

		value, calls, est := d.estimate(ctx, ansatz, op, x, hist.len()+1)
		portCalls += calls

		d.record(hist, x, value, est, gradientPoint)
		return value
	}

	objective := func(x []float64) float64 {
		return evaluate(x, false)
	}

	var gradient opt.Gradient
	gradPort, hasAnalytic := d.Port.(GradientPort)
	switch {
	// The analytic path covers only the base expectation, so it cannot
	// serve a penalized objective.
	case hasAnalytic && d.Penalty == nil:
		gradient = func(x []float64) []float64 {
			return d.analyticGradient(ctx, gradPort, ansatz, op, x, &portCalls, hist)
		}
	case d.Gradient != nil:
		gradient = func(x []float64) []float64 {
			points := d.Gradient.Plan(x)
			values := d.evalBatch(ctx, ansatz, op, points, &portCalls, hist)
			return d.Gradient.Combine(x, values)
		}
	}

	res := d.Optimizer.Minimize(objective, gradient, x0, lower, upper)

	out.bestParams = append([]float64(nil), res.X...)
	out.bestValue = res.Value
	out.evaluations = portCalls
	out.reason = res.Reason
	out.status = StatusConverged
	return out, nil
}

// checkBoundary enforces cancellation and the evaluation ceiling. Both are
// polled only here, at the port-call boundary, never mid-evaluation.
func (d *Driver) checkBoundary(ctx context.Context, portCalls int) {
	if ctx.Err() != nil {
		panic(runAbort{reason: "cancelled"})
	}
	if d.MaxEvaluations > 0 && portCalls >= d.MaxEvaluations {
		panic(runAbort{reason: "evaluation limit reached"})
	}
}

// abortFor classifies a port failure. A cancellation that lands mid-call
// (the port returning the context's error, or the context found cancelled
// afterwards) is an interruption like any boundary-polled cancellation;
// everything else is a genuine port failure.
func abortFor(ctx context.Context, evalErr *EvaluationError) runAbort {
	if ctx.Err() != nil ||
		errors.Is(evalErr, context.Canceled) ||
		errors.Is(evalErr, context.DeadlineExceeded) {
		return runAbort{reason: "cancelled"}
	}
	return runAbort{err: evalErr}
}

// estimate issues one port call (plus the penalty term, when configured)
// for a private copy of x and returns the total objective value.
func (d *Driver) estimate(ctx context.Context, ansatz Ansatz, op Operator, x []float64, evaluation int) (float64, int, Estimate) {
	params := append([]float64(nil), x...)

	est, err := d.Port.Estimate(ctx, ansatz, op, params)
	calls := 1
	if err != nil {
		panic(abortFor(ctx, &EvaluationError{Evaluation: evaluation, Params: params, Err: err}))
	}

	value := est.Value
	if d.Penalty != nil {
		penalty, penaltyCalls, perr := d.Penalty(ctx, params)
		calls += penaltyCalls
		if perr != nil {
			panic(abortFor(ctx, &EvaluationError{Evaluation: evaluation, Params: params, Err: perr}))
		}
		value += penalty
	}
	return value, calls, est
}

// record appends one history entry and fires the callback. The callback
// receives its own copy of the parameters so it can never alias the
// optimizer's buffers or the history's records.
func (d *Driver) record(hist *history, x []float64, value float64, est Estimate, gradientPoint bool) {
	rec := Record{
		Evaluation:    hist.len() + 1,
		Params:        append([]float64(nil), x...),
		Value:         value,
		Variance:      est.Variance,
		HasVariance:   est.HasVariance,
		GradientPoint: gradientPoint,
	}
	hist.append(rec)

	if d.Callback != nil {
		d.Callback(rec.Evaluation, append([]float64(nil), x...), value, EvalMeta{
			Variance:      est.Variance,
			HasVariance:   est.HasVariance,
			GradientPoint: gradientPoint,
			Level:         d.Level,
		})
	}
}

// analyticGradient asks a gradient-capable port for the gradient at x,
// costing a single port call recorded like any other evaluation. Note the
// analytic gradient covers only the base expectation, not the deflation
// penalty; deflation runs use the perturbation strategy instead.
func (d *Driver) analyticGradient(ctx context.Context, port GradientPort, ansatz Ansatz, op Operator, x []float64, portCalls *int, hist *history) []float64 {
	d.checkBoundary(ctx, *portCalls)

	params := append([]float64(nil), x...)
	est, err := port.EstimateGradient(ctx, ansatz, op, params)
	*portCalls++
	if err != nil {
		panic(abortFor(ctx, &EvaluationError{Evaluation: hist.len() + 1, Params: params, Err: err}))
	}
	d.record(hist, params, est.Value, est, true)
	return est.Gradient
}

// evalBatch evaluates a gradient plan. Points run sequentially unless
// Concurrency > 1, in which case up to Concurrency port calls are in
// flight at once; records and callbacks are then emitted in plan order
// after the whole batch lands, preserving the logical evaluation order.
func (d *Driver) evalBatch(ctx context.Context, ansatz Ansatz, op Operator, points [][]float64, portCalls *int, hist *history) []float64 {
	values := make([]float64, len(points))

	if d.Concurrency <= 1 {
		for i, p := range points {
			d.checkBoundary(ctx, *portCalls)
			value, calls, est := d.estimate(ctx, ansatz, op, p, hist.len()+1)
			*portCalls += calls
			d.record(hist, p, value, est, true)
			values[i] = value
		}
		return values
	}

	d.checkBoundary(ctx, *portCalls)

	estimates := make([]Estimate, len(points))
	var mu sync.Mutex
	batchCalls := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Concurrency)
	for i, p := range points {
		g.Go(func() error {
			params := append([]float64(nil), p...)
			est, err := d.Port.Estimate(gctx, ansatz, op, params)
			mu.Lock()
			batchCalls++
			mu.Unlock()
			if err != nil {
				return &EvaluationError{Evaluation: hist.len() + 1 + i, Params: params, Err: err}
			}
			value := est.Value
			if d.Penalty != nil {
				penalty, calls, perr := d.Penalty(gctx, params)
				mu.Lock()
				batchCalls += calls
				mu.Unlock()
				if perr != nil {
					return &EvaluationError{Evaluation: hist.len() + 1 + i, Params: params, Err: perr}
				}
				value += penalty
			}
			estimates[i] = est
			values[i] = value
			return nil
		})
	}
	err := g.Wait()
	*portCalls += batchCalls
	if err != nil {
		evalErr, ok := err.(*EvaluationError)
		if !ok {
			evalErr = &EvaluationError{Evaluation: hist.len() + 1, Err: err}
		}
		panic(abortFor(ctx, evalErr))
	}

	for i, p := range points {
		d.record(hist, p, values[i], estimates[i], true)
	}
	return values
}
