package store

import (
	"fmt"
	"time"
)

// RunConfig holds the configuration of an optimization run. It mirrors
// the engine configuration in a serializable form and lives here, not in
// the server package, to avoid import cycles.
type RunConfig struct {
	Method       string    `json:"method"` // stationary, lagrange, newton, steepest
	Objective    string    `json:"objective"`
	NumVars      int       `json:"numVars"`
	Minimize     bool      `json:"minimize"`
	Constraints  []string  `json:"constraints,omitempty"`
	InitialPoint []float64 `json:"initialPoint,omitempty"`
	Epsilon      float64   `json:"epsilon,omitempty"`
	Epochs       int       `json:"epochs,omitempty"`
	Descent      bool      `json:"descent,omitempty"`

	// TimeoutSec bounds the wall-clock time of the symbolic solve.
	// Zero disables the timeout.
	TimeoutSec int `json:"timeoutSec,omitempty"`
}

// Validate checks that the config describes a runnable optimization.
func (c RunConfig) Validate() error {
	if c.Method == "" {
		return &ValidationError{Field: "Method", Reason: "cannot be empty"}
	}
	if c.Objective == "" {
		return &ValidationError{Field: "Objective", Reason: "cannot be empty"}
	}
	if c.NumVars <= 0 {
		return &ValidationError{Field: "NumVars", Reason: "must be positive"}
	}
	if c.TimeoutSec < 0 {
		return &ValidationError{Field: "TimeoutSec", Reason: "cannot be negative"}
	}
	return nil
}

// RunRecord is the persisted outcome of one optimization run. Found
// distinguishes a solved run from the normal no-qualifying-solution
// outcome; both are completed runs.
type RunRecord struct {
	RunID      string    `json:"runId"`
	Config     RunConfig `json:"config"`
	State      string    `json:"state"` // completed, failed, cancelled
	Found      bool      `json:"found"`
	Point      []float64 `json:"point,omitempty"`
	Value      float64   `json:"value,omitempty"`
	Iterations int       `json:"iterations"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunRecord creates a record from run results.
func NewRunRecord(runID string, config RunConfig, state string, found bool, point []float64, value float64, iterations int) *RunRecord {
	return &RunRecord{
		RunID:      runID,
		Config:     config,
		State:      state,
		Found:      found,
		Point:      point,
		Value:      value,
		Iterations: iterations,
		Timestamp:  time.Now(),
	}
}

// Validate checks that the record has consistent data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.State == "" {
		return &ValidationError{Field: "State", Reason: "cannot be empty"}
	}
	if r.Found && len(r.Point) != r.Config.NumVars {
		return &ValidationError{
			Field:  "Point",
			Reason: fmt.Sprintf("length mismatch: expected %d entries, got %d", r.Config.NumVars, len(r.Point)),
		}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return r.Config.Validate()
}

// RunInfo is listing metadata for a run, without the full point data.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Method    string    `json:"method"`
	Objective string    `json:"objective"`
	State     string    `json:"state"`
	Found     bool      `json:"found"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ToInfo converts a full RunRecord to its listing metadata.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:     r.RunID,
		Method:    r.Config.Method,
		Objective: r.Config.Objective,
		State:     r.State,
		Found:     r.Found,
		Value:     r.Value,
		Timestamp: r.Timestamp,
	}
}

// ValidationError reports an invalid field in a config or record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
