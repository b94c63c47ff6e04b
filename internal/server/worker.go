package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qbitwise/varqe/internal/config"
	"github.com/qbitwise/varqe/internal/eigen"
	"github.com/qbitwise/varqe/internal/store"
)

// runJob executes an eigensolver job in the background: it assembles the
// solver from the job configuration, streams per-evaluation progress,
// persists the finished run, and moves the job to its terminal state.
func (s *Server) runJob(job *Job) {
	ctx, cancel := context.WithCancel(context.Background())
	s.jobManager.RegisterCancel(job.ID, cancel)
	defer func() {
		cancel()
		s.jobManager.dropCancel(job.ID)
	}()

	logger := slog.With("jobId", job.ID, "algorithm", job.Config.Algorithm)
	logger.Info("job started")

	s.setJobState(job.ID, StateRunning)

	trace, err := store.NewTraceWriter(s.dataDir, job.ID)
	if err != nil {
		s.failJob(job.ID, fmt.Errorf("creating trace: %w", err))
		return
	}
	defer trace.Close()

	pairs, err := s.solve(ctx, job, trace)

	record := &store.RunRecord{
		RunID:     job.ID,
		Config:    job.Config,
		Pairs:     pairs,
		StartTime: job.StartTime,
		EndTime:   time.Now(),
	}

	switch {
	case ctx.Err() != nil:
		record.Status = string(StateCancelled)
	case err != nil:
		record.Status = string(StateFailed)
		record.Error = err.Error()
	default:
		record.Status = string(StateCompleted)
	}

	if len(pairs) > 0 {
		if saveErr := s.store.SaveRun(job.ID, record); saveErr != nil {
			logger.Error("persisting run failed", "error", saveErr)
		}
	}

	if err != nil && ctx.Err() == nil {
		s.failJob(job.ID, err)
		logger.Error("job failed", "error", err)
		return
	}

	state := StateCompleted
	if ctx.Err() != nil {
		state = StateCancelled
	}
	now := time.Now()
	s.jobManager.UpdateJob(job.ID, func(j *Job) {
		j.State = state
		j.Pairs = pairs
		j.EndTime = &now
	})
	s.broadcastJob(job.ID)
	logger.Info("job finished", "state", state, "eigenpairs", len(pairs))
}

// solve runs the configured algorithm and returns the found eigenpairs.
// An interrupted run still returns the eigenpairs found so far.
func (s *Server) solve(ctx context.Context, job *Job, trace *store.TraceWriter) ([]store.EigenpairRecord, error) {
	op, err := config.BuildOperator(&job.Config)
	if err != nil {
		return nil, err
	}

	vqe, err := config.BuildVQE(&job.Config)
	if err != nil {
		return nil, err
	}
	vqe.Callback = s.progressCallback(job.ID, trace)

	switch job.Config.Algorithm {
	case "vqe":
		ansatz, err := config.BuildAnsatz(&job.Config, op)
		if err != nil {
			return nil, err
		}
		result, err := vqe.Compute(ctx, ansatz, op, nil)
		if err != nil {
			return nil, err
		}
		return []store.EigenpairRecord{store.NewEigenpairRecord(result)}, nil

	case "qaoa":
		result, err := config.BuildQAOA(&job.Config, vqe).Compute(ctx, op, nil)
		if err != nil {
			return nil, err
		}
		return []store.EigenpairRecord{store.NewEigenpairRecord(result)}, nil

	case "vqd":
		ansatz, err := config.BuildAnsatz(&job.Config, op)
		if err != nil {
			return nil, err
		}
		seq, err := config.BuildVQD(&job.Config, vqe).Compute(ctx, ansatz, op)
		if seq == nil {
			return nil, err
		}
		pairs := make([]store.EigenpairRecord, 0, len(seq.Eigenpairs))
		for _, r := range seq.Eigenpairs {
			pairs = append(pairs, store.NewEigenpairRecord(r))
		}
		return pairs, err

	default:
		return nil, fmt.Errorf("unknown algorithm %q", job.Config.Algorithm)
	}
}

// progressCallback observes every evaluation: it updates the job's live
// best value, appends a trace entry, and broadcasts to SSE subscribers.
func (s *Server) progressCallback(jobID string, trace *store.TraceWriter) eigen.Callback {
	return func(evaluation int, params []float64, value float64, meta eigen.EvalMeta) {
		var best float64
		s.jobManager.UpdateJob(jobID, func(j *Job) {
			j.Evaluations = evaluation
			j.Level = meta.Level
			if evaluation == 1 || value < j.BestValue {
				j.BestValue = value
			}
			best = j.BestValue
		})

		entry := store.TraceEntry{
			Evaluation: evaluation,
			Level:      meta.Level,
			Value:      value,
			Params:     params,
			Timestamp:  time.Now(),
		}
		if meta.HasVariance {
			entry.Variance = meta.Variance
		}
		if err := trace.Write(entry); err != nil {
			slog.Warn("trace write failed", "jobId", jobID, "error", err)
		}

		s.jobManager.broadcaster.Broadcast(ProgressEvent{
			JobID:       jobID,
			State:       StateRunning,
			Evaluations: evaluation,
			BestValue:   best,
			Level:       meta.Level,
			Timestamp:   time.Now(),
		})
	}
}

func (s *Server) setJobState(id string, state JobState) {
	s.jobManager.UpdateJob(id, func(j *Job) {
		j.State = state
	})
	s.broadcastJob(id)
}

func (s *Server) failJob(id string, err error) {
	now := time.Now()
	s.jobManager.UpdateJob(id, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &now
	})
	s.broadcastJob(id)
}

func (s *Server) broadcastJob(id string) {
	job, ok := s.jobManager.GetJob(id)
	if !ok {
		return
	}
	s.jobManager.broadcaster.Broadcast(ProgressEvent{
		JobID:       job.ID,
		State:       job.State,
		Evaluations: job.Evaluations,
		BestValue:   job.BestValue,
		Level:       job.Level,
		Timestamp:   time.Now(),
	})
}
