package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/petergeorge7/optisym/internal/engine"
	"github.com/petergeorge7/optisym/internal/store"
)

var (
	runMethod      string
	runObjective   string
	runNumVars     int
	runMaximize    bool
	runConstraints []string
	runPoint       []float64
	runEpsilon     float64
	runEpochs      int
	runAscent      bool
	runSave        bool
	runDataDir     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot optimization",
	Long: `Optimizes a symbolic objective over variables x_0 .. x_{n-1} and prints
the optimal point and value. The objective and any constraints are infix
expressions, e.g. "x_0^3 - x_0 + x_1^2".`,
	RunE: runOptimize,
}

func init() {
	runCmd.Flags().StringVar(&runMethod, "method", "stationary", "Method: stationary, lagrange, newton, steepest")
	runCmd.Flags().StringVar(&runObjective, "objective", "", "Objective function (required)")
	runCmd.Flags().IntVar(&runNumVars, "vars", 1, "Number of variables")
	runCmd.Flags().BoolVar(&runMaximize, "maximize", false, "Maximize instead of minimize")
	runCmd.Flags().StringArrayVar(&runConstraints, "constraint", nil, "Equality constraint g(x) = 0 (lagrange, repeatable)")
	runCmd.Flags().Float64SliceVar(&runPoint, "point", nil, "Initial point (newton, steepest)")
	runCmd.Flags().Float64Var(&runEpsilon, "epsilon", 0, "Convergence threshold (newton, default 1e-3)")
	runCmd.Flags().IntVar(&runEpochs, "epochs", 0, "Epoch budget (steepest, default 10)")
	runCmd.Flags().BoolVar(&runAscent, "ascent", false, "Steepest ascent instead of descent")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Persist the run record")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for run storage")

	runCmd.MarkFlagRequired("objective")
	rootCmd.AddCommand(runCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	method, err := engine.ParseMethod(runMethod)
	if err != nil {
		return err
	}

	slog.Info("Starting optimization", "method", runMethod, "objective", runObjective, "vars", runNumVars)

	cfg := engine.Config{
		Objective:    runObjective,
		NumVars:      runNumVars,
		Minimize:     !runMaximize,
		Constraints:  runConstraints,
		InitialPoint: runPoint,
		Epsilon:      runEpsilon,
		Epochs:       runEpochs,
		Descent:      !runAscent,
		OnIteration: func(st engine.IterationState) {
			slog.Debug("Iteration", "step", st.Step, "point", st.Point, "grad_norm", st.GradNorm, "converged", st.Converged)
		},
	}

	start := time.Now()
	result, err := engine.New().Optimize(method, cfg)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if result == nil {
		slog.Info("Optimization complete", "elapsed", elapsed, "found", false)
		fmt.Println("No qualifying solution found.")
	} else {
		slog.Info("Optimization complete", "elapsed", elapsed, "found", true, "value", result.Value)
		fmt.Printf("Optimal point: %s\n", formatPoint(result.Point))
		fmt.Printf("Optimal value: %g\n", result.Value)
	}

	if runSave {
		return saveRunRecord(result)
	}
	return nil
}

func saveRunRecord(result *engine.Result) error {
	runStore, err := store.NewFSStore(runDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	runID := uuid.New().String()
	config := store.RunConfig{
		Method:       runMethod,
		Objective:    runObjective,
		NumVars:      runNumVars,
		Minimize:     !runMaximize,
		Constraints:  runConstraints,
		InitialPoint: runPoint,
		Epsilon:      runEpsilon,
		Epochs:       runEpochs,
		Descent:      !runAscent,
	}

	var point []float64
	var value float64
	found := result != nil
	if found {
		point = result.Point
		value = result.Value
	}

	record := store.NewRunRecord(runID, config, "completed", found, point, value, 0)
	if err := runStore.SaveRun(runID, record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("Saved run %s\n", runID)
	return nil
}

func formatPoint(point []float64) string {
	parts := make([]string, len(point))
	for i, v := range point {
		parts[i] = fmt.Sprintf("x_%d = %g", i, v)
	}
	return strings.Join(parts, ", ")
}
