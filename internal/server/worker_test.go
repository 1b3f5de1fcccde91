package server

import (
	"context"
	"testing"

	"github.com/petergeorge7/optisym/internal/store"
)

func setupWorkerStore(t *testing.T) *store.FSStore {
	t.Helper()

	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return st
}

func TestRunOptimization_Stationary(t *testing.T) {
	rm := NewRunManager()
	st := setupWorkerStore(t)

	run := rm.CreateRun(RunConfig{
		Method:    "stationary",
		Objective: "x_0^3 - x_0",
		NumVars:   1,
		Minimize:  true,
	})

	if err := runOptimization(context.Background(), rm, st, run.ID); err != nil {
		t.Fatalf("runOptimization failed: %v", err)
	}

	result, _ := rm.GetRun(run.ID)
	if result.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error: %s)", result.State, result.Error)
	}
	if !result.Found {
		t.Fatal("Expected a minimum to be found")
	}
	if len(result.Point) != 1 || result.Point[0] != 0.5774 {
		t.Errorf("Point = %v, want [0.5774]", result.Point)
	}
	if result.Value != -0.3849 {
		t.Errorf("Value = %v, want -0.3849", result.Value)
	}

	// Final record is persisted
	record, err := st.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if !record.Found || record.Value != -0.3849 {
		t.Errorf("Persisted record mismatch: found=%v value=%v", record.Found, record.Value)
	}
}

func TestRunOptimization_NewtonTrace(t *testing.T) {
	rm := NewRunManager()
	st := setupWorkerStore(t)

	run := rm.CreateRun(RunConfig{
		Method:       "newton",
		Objective:    "2*x_0*sin(x_0)",
		NumVars:      1,
		Minimize:     false,
		InitialPoint: []float64{2.5},
		Epsilon:      0.001,
	})

	if err := runOptimization(context.Background(), rm, st, run.ID); err != nil {
		t.Fatalf("runOptimization failed: %v", err)
	}

	result, _ := rm.GetRun(run.ID)
	if result.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error: %s)", result.State, result.Error)
	}
	if !result.Found {
		t.Fatal("Expected a maximum to be found")
	}
	if result.Iterations < 1 {
		t.Errorf("Expected at least one iteration, got %d", result.Iterations)
	}

	// Every iteration landed in the trace, plus the converged snapshot
	reader, err := store.NewTraceReader(st.BaseDir(), run.ID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != result.Iterations+1 {
		t.Errorf("Trace has %d entries, want %d", len(entries), result.Iterations+1)
	}
	if len(entries) > 0 && !entries[len(entries)-1].Converged {
		t.Error("Expected final trace entry to be converged")
	}
}

func TestRunOptimization_NoSolution(t *testing.T) {
	rm := NewRunManager()
	st := setupWorkerStore(t)

	// Linear objective has no critical points
	run := rm.CreateRun(RunConfig{
		Method:    "stationary",
		Objective: "x_0",
		NumVars:   1,
		Minimize:  true,
	})

	if err := runOptimization(context.Background(), rm, st, run.ID); err != nil {
		t.Fatalf("runOptimization failed: %v", err)
	}

	result, _ := rm.GetRun(run.ID)
	if result.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error: %s)", result.State, result.Error)
	}
	if result.Found {
		t.Error("Expected no solution for a linear objective")
	}
	if result.Point != nil {
		t.Errorf("Expected nil point, got %v", result.Point)
	}
}

func TestRunOptimization_ConfigError(t *testing.T) {
	rm := NewRunManager()
	st := setupWorkerStore(t)

	// Lagrange without constraints is a configuration error
	run := rm.CreateRun(RunConfig{
		Method:    "lagrange",
		Objective: "x_0^2",
		NumVars:   1,
		Minimize:  true,
	})

	if err := runOptimization(context.Background(), rm, st, run.ID); err == nil {
		t.Fatal("Expected error for lagrange without constraints")
	}

	result, _ := rm.GetRun(run.ID)
	if result.State != StateFailed {
		t.Errorf("Expected failed state, got %s", result.State)
	}
	if result.Error == "" {
		t.Error("Expected error message on failed run")
	}

	// Failure is persisted too
	record, err := st.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if record.State != "failed" || record.Error == "" {
		t.Errorf("Persisted record mismatch: state=%s error=%q", record.State, record.Error)
	}
}

func TestRunOptimization_Cancelled(t *testing.T) {
	rm := NewRunManager()

	run := rm.CreateRun(RunConfig{
		Method:       "newton",
		Objective:    "x_0^2",
		NumVars:      1,
		Minimize:     true,
		InitialPoint: []float64{3},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runOptimization(ctx, rm, nil, run.ID); err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	result, _ := rm.GetRun(run.ID)
	if result.State != StateCancelled {
		t.Errorf("Expected cancelled state, got %s", result.State)
	}
}
