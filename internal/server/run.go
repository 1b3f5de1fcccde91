package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petergeorge7/optisym/internal/store"
)

// RunState represents the current state of a run
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// RunConfig is an alias to avoid duplication with store.RunConfig
type RunConfig = store.RunConfig

// Run represents one optimization run
type Run struct {
	ID         string     `json:"id"`
	State      RunState   `json:"state"`
	Config     RunConfig  `json:"config"`
	Found      bool       `json:"found"`
	Point      []float64  `json:"point,omitempty"`
	Value      float64    `json:"value"`
	GradNorm   float64    `json:"gradNorm"`
	Iterations int        `json:"iterations"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RunManager manages the lifecycle of runs
type RunManager struct {
	mu          sync.RWMutex
	runs        map[string]*Run
	broadcaster *EventBroadcaster
}

// NewRunManager creates a new RunManager
func NewRunManager() *RunManager {
	return &RunManager{
		runs:        make(map[string]*Run),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateRun creates a new run with the given configuration
func (rm *RunManager) CreateRun(config RunConfig) *Run {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run := &Run{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	rm.runs[run.ID] = run
	return run
}

// GetRun retrieves a run by ID
func (rm *RunManager) GetRun(id string) (*Run, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	run, exists := rm.runs[id]
	return run, exists
}

// ListRuns returns all runs
func (rm *RunManager) ListRuns() []*Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	runs := make([]*Run, 0, len(rm.runs))
	for _, run := range rm.runs {
		runs = append(runs, run)
	}
	return runs
}

// UpdateRun atomically updates a run using the provided function
func (rm *RunManager) UpdateRun(id string, updateFn func(*Run)) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, exists := rm.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}

	updateFn(run)
	return nil
}

// RemoveRun drops a run from the in-memory table
func (rm *RunManager) RemoveRun(id string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.runs, id)
}

// GetActiveRuns returns all runs currently pending or running
func (rm *RunManager) GetActiveRuns() []*Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	activeRuns := make([]*Run, 0)
	for _, run := range rm.runs {
		if run.State == StatePending || run.State == StateRunning {
			activeRuns = append(activeRuns, run)
		}
	}
	return activeRuns
}
