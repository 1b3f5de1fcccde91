package server

import (
	"testing"
	"time"
)

func TestRunManager_CreateRun(t *testing.T) {
	rm := NewRunManager()

	config := RunConfig{
		Method:    "stationary",
		Objective: "x_0^3 - x_0",
		NumVars:   1,
		Minimize:  true,
	}

	run := rm.CreateRun(config)

	if run.ID == "" {
		t.Error("Run ID should not be empty")
	}

	if run.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", run.State)
	}

	if run.Config.Objective != "x_0^3 - x_0" {
		t.Errorf("Config not set correctly")
	}
}

func TestRunManager_GetRun(t *testing.T) {
	rm := NewRunManager()

	config := RunConfig{Method: "stationary", Objective: "x_0^2", NumVars: 1}
	run := rm.CreateRun(config)

	retrieved, exists := rm.GetRun(run.ID)
	if !exists {
		t.Error("Run should exist")
	}

	if retrieved.ID != run.ID {
		t.Error("Retrieved wrong run")
	}

	_, exists = rm.GetRun("nonexistent")
	if exists {
		t.Error("Should not find nonexistent run")
	}
}

func TestRunManager_ListRuns(t *testing.T) {
	rm := NewRunManager()

	if len(rm.ListRuns()) != 0 {
		t.Error("Should start with no runs")
	}

	rm.CreateRun(RunConfig{Method: "newton", Objective: "x_0^2", NumVars: 1})
	rm.CreateRun(RunConfig{Method: "steepest", Objective: "x_0^2", NumVars: 1})

	runs := rm.ListRuns()
	if len(runs) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(runs))
	}
}

func TestRunManager_UpdateRun(t *testing.T) {
	rm := NewRunManager()

	run := rm.CreateRun(RunConfig{Method: "newton", Objective: "x_0^2", NumVars: 1})

	err := rm.UpdateRun(run.ID, func(r *Run) {
		r.State = StateRunning
		r.Iterations = 5
	})
	if err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	updated, _ := rm.GetRun(run.ID)
	if updated.State != StateRunning {
		t.Errorf("Expected running state, got %s", updated.State)
	}
	if updated.Iterations != 5 {
		t.Errorf("Expected 5 iterations, got %d", updated.Iterations)
	}

	err = rm.UpdateRun("nonexistent", func(r *Run) {})
	if err == nil {
		t.Error("Expected error for nonexistent run")
	}
}

func TestRunManager_RemoveRun(t *testing.T) {
	rm := NewRunManager()

	run := rm.CreateRun(RunConfig{Method: "newton", Objective: "x_0^2", NumVars: 1})
	rm.RemoveRun(run.ID)

	if _, exists := rm.GetRun(run.ID); exists {
		t.Error("Run should be gone after RemoveRun")
	}
}

func TestRunManager_GetActiveRuns(t *testing.T) {
	rm := NewRunManager()

	a := rm.CreateRun(RunConfig{Method: "newton", Objective: "x_0^2", NumVars: 1})
	b := rm.CreateRun(RunConfig{Method: "newton", Objective: "x_0^2", NumVars: 1})

	rm.UpdateRun(a.ID, func(r *Run) { r.State = StateRunning })
	rm.UpdateRun(b.ID, func(r *Run) { r.State = StateCompleted })

	active := rm.GetActiveRuns()
	if len(active) != 1 {
		t.Fatalf("Expected 1 active run, got %d", len(active))
	}
	if active[0].ID != a.ID {
		t.Error("Wrong run reported active")
	}
}

func TestEventBroadcaster_SubscribeBroadcast(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("run-1")
	defer eb.Unsubscribe("run-1", ch)

	event := ProgressEvent{
		RunID:      "run-1",
		State:      StateRunning,
		Iterations: 3,
		GradNorm:   0.25,
		Timestamp:  time.Now(),
	}
	eb.Broadcast(event)

	select {
	case got := <-ch:
		if got.Iterations != 3 {
			t.Errorf("Iterations = %d, want 3", got.Iterations)
		}
		if got.GradNorm != 0.25 {
			t.Errorf("GradNorm = %v, want 0.25", got.GradNorm)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestEventBroadcaster_LastEventReplay(t *testing.T) {
	eb := NewEventBroadcaster()

	// Broadcast with no subscribers still records the last event
	eb.Broadcast(ProgressEvent{RunID: "run-2", State: StateRunning, Iterations: 7})

	ch := eb.Subscribe("run-2")
	defer eb.Unsubscribe("run-2", ch)

	select {
	case got := <-ch:
		if got.Iterations != 7 {
			t.Errorf("Replayed Iterations = %d, want 7", got.Iterations)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected replay of last event on subscribe")
	}
}

func TestEventBroadcaster_CleanupRun(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("run-3")
	eb.CleanupRun("run-3")

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after cleanup")
	}
}
