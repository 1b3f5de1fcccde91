package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/petergeorge7/optisym/internal/engine"
	"github.com/petergeorge7/optisym/internal/store"
)

var rerunDataDir string

var rerunCmd = &cobra.Command{
	Use:   "rerun [run-id]",
	Short: "Re-execute a stored run",
	Long: `Loads the configuration of a stored run and executes it again locally,
saving the outcome as a new run record.`,
	Args: cobra.ExactArgs(1),
	RunE: runRerun,
}

func init() {
	rerunCmd.Flags().StringVar(&rerunDataDir, "data-dir", "./data", "Base directory for run storage")
	rootCmd.AddCommand(rerunCmd)
}

func runRerun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(rerunDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	record, err := runStore.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	method, err := engine.ParseMethod(record.Config.Method)
	if err != nil {
		return err
	}

	slog.Info("Re-executing run",
		"source_run_id", record.RunID,
		"method", record.Config.Method,
		"objective", record.Config.Objective,
	)

	iterations := 0
	cfg := engine.Config{
		Objective:    record.Config.Objective,
		NumVars:      record.Config.NumVars,
		Minimize:     record.Config.Minimize,
		Constraints:  record.Config.Constraints,
		InitialPoint: record.Config.InitialPoint,
		Epsilon:      record.Config.Epsilon,
		Epochs:       record.Config.Epochs,
		Descent:      record.Config.Descent,
		OnIteration: func(st engine.IterationState) {
			iterations = st.Step
			slog.Debug("Iteration", "step", st.Step, "point", st.Point, "grad_norm", st.GradNorm)
		},
	}

	start := time.Now()
	result, err := engine.New().Optimize(method, cfg)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if result == nil {
		slog.Info("Rerun complete", "elapsed", elapsed, "found", false)
		fmt.Println("No qualifying solution found.")
	} else {
		slog.Info("Rerun complete", "elapsed", elapsed, "found", true, "value", result.Value)
		fmt.Printf("Optimal point: %s\n", formatPoint(result.Point))
		fmt.Printf("Optimal value: %g\n", result.Value)
	}

	newID := uuid.New().String()
	var point []float64
	var value float64
	found := result != nil
	if found {
		point = result.Point
		value = result.Value
	}

	newRecord := store.NewRunRecord(newID, record.Config, "completed", found, point, value, iterations)
	if err := runStore.SaveRun(newID, newRecord); err != nil {
		return fmt.Errorf("failed to save rerun: %w", err)
	}

	fmt.Printf("Saved run %s\n", newID)
	return nil
}
