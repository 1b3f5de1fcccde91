package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/petergeorge7/optisym/internal/engine"
	"github.com/petergeorge7/optisym/internal/store"
)

// runOptimization executes an optimization run in the background.
// If runStore is not nil, the final record and an iteration trace are
// persisted under its base directory.
func runOptimization(ctx context.Context, rm *RunManager, runStore *store.FSStore, runID string) error {
	run, exists := rm.GetRun(runID)
	if !exists {
		return fmt.Errorf("run not found: %s", runID)
	}

	err := rm.UpdateRun(runID, func(r *Run) {
		r.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting run", "run_id", runID, "method", run.Config.Method, "objective", run.Config.Objective)

	method, err := engine.ParseMethod(run.Config.Method)
	if err != nil {
		markRunFailed(rm, runStore, runID, err)
		return err
	}

	// Open the iteration trace before the solve starts
	var trace *store.TraceWriter
	if runStore != nil {
		trace, err = store.NewTraceWriter(runStore.BaseDir(), runID)
		if err != nil {
			markRunFailed(rm, runStore, runID, fmt.Errorf("failed to open trace: %w", err))
			return err
		}
		defer trace.Close()
	}

	cfg := engine.Config{
		Objective:    run.Config.Objective,
		NumVars:      run.Config.NumVars,
		Minimize:     run.Config.Minimize,
		Constraints:  run.Config.Constraints,
		InitialPoint: run.Config.InitialPoint,
		Epsilon:      run.Config.Epsilon,
		Epochs:       run.Config.Epochs,
		Descent:      run.Config.Descent,
		OnIteration: func(st engine.IterationState) {
			rm.UpdateRun(runID, func(r *Run) {
				r.Point = st.Point
				r.GradNorm = st.GradNorm
				r.Iterations = st.Step
			})

			rm.broadcaster.Broadcast(ProgressEvent{
				RunID:      runID,
				State:      StateRunning,
				Iterations: st.Step,
				Point:      st.Point,
				GradNorm:   st.GradNorm,
				Timestamp:  time.Now(),
			})

			if trace != nil {
				entry := store.TraceEntry{
					Step:      st.Step,
					Point:     st.Point,
					GradNorm:  st.GradNorm,
					Converged: st.Converged,
					Timestamp: time.Now(),
				}
				if err := trace.Write(entry); err != nil {
					slog.Warn("Failed to write trace entry", "run_id", runID, "error", err)
				}
			}
		},
	}

	// Bound the symbolic solve with the configured wall-clock timeout
	if run.Config.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(run.Config.TimeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	result, err := optimizeWithContext(ctx, method, cfg)
	elapsed := time.Since(start)

	if trace != nil {
		if ferr := trace.Flush(); ferr != nil {
			slog.Warn("Failed to flush trace", "run_id", runID, "error", ferr)
		}
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			markRunFailed(rm, runStore, runID, fmt.Errorf("run timed out after %ds", run.Config.TimeoutSec))
			return err
		}
		if ctx.Err() == context.Canceled {
			markRunCancelled(rm, runStore, runID)
			return err
		}
		markRunFailed(rm, runStore, runID, err)
		return err
	}

	endTime := time.Now()
	err = rm.UpdateRun(runID, func(r *Run) {
		r.State = StateCompleted
		r.EndTime = &endTime
		if result != nil {
			r.Found = true
			r.Point = result.Point
			r.Value = result.Value
		} else {
			r.Found = false
			r.Point = nil
		}
	})
	if err != nil {
		return err
	}

	run, _ = rm.GetRun(runID)
	persistRun(rm, runStore, runID)

	slog.Info("Run completed",
		"run_id", runID,
		"elapsed", elapsed,
		"found", run.Found,
		"value", run.Value,
		"iterations", run.Iterations,
	)

	// Broadcast final completion event
	rm.broadcaster.Broadcast(ProgressEvent{
		RunID:      runID,
		State:      StateCompleted,
		Iterations: run.Iterations,
		Point:      run.Point,
		GradNorm:   run.GradNorm,
		Timestamp:  time.Now(),
	})

	return nil
}

// optimizeWithContext runs the engine in a goroutine so a timeout or
// cancellation can unblock the caller. The solve itself is not
// interruptible; an abandoned solve finishes in the background and its
// result is discarded.
func optimizeWithContext(ctx context.Context, method engine.Method, cfg engine.Config) (*engine.Result, error) {
	// Check for cancellation before starting the expensive solve
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	type outcome struct {
		result *engine.Result
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := engine.New().Optimize(method, cfg)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}

// persistRun saves the current run state to the store
func persistRun(rm *RunManager, runStore *store.FSStore, runID string) {
	if runStore == nil {
		return
	}

	run, exists := rm.GetRun(runID)
	if !exists {
		return
	}

	record := store.NewRunRecord(runID, run.Config, string(run.State), run.Found, run.Point, run.Value, run.Iterations)
	record.Error = run.Error

	if err := runStore.SaveRun(runID, record); err != nil {
		slog.Error("Failed to persist run", "run_id", runID, "error", err)
	}
}

// markRunFailed marks a run as failed with an error message
func markRunFailed(rm *RunManager, runStore *store.FSStore, runID string, err error) {
	endTime := time.Now()
	rm.UpdateRun(runID, func(r *Run) {
		r.State = StateFailed
		r.Error = err.Error()
		r.EndTime = &endTime
	})
	persistRun(rm, runStore, runID)
	rm.broadcaster.Broadcast(ProgressEvent{
		RunID:     runID,
		State:     StateFailed,
		Timestamp: time.Now(),
	})
	slog.Error("Run failed", "run_id", runID, "error", err)
}

// markRunCancelled marks a run as cancelled
func markRunCancelled(rm *RunManager, runStore *store.FSStore, runID string) {
	endTime := time.Now()
	rm.UpdateRun(runID, func(r *Run) {
		r.State = StateCancelled
		r.EndTime = &endTime
	})
	persistRun(rm, runStore, runID)
	rm.broadcaster.Broadcast(ProgressEvent{
		RunID:     runID,
		State:     StateCancelled,
		Timestamp: time.Now(),
	})
	slog.Info("Run cancelled", "run_id", runID)
}
