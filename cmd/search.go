package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/petergeorge7/optisym/internal/opt"
	"github.com/petergeorge7/optisym/internal/symbolic"
)

var (
	searchObjective string
	searchNumVars   int
	searchLower     float64
	searchUpper     float64
	searchIters     int
	searchPopSize   int
	searchSeed      int64
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run derivative-free global search",
	Long: `Minimizes a symbolic objective with the mayfly metaheuristic over a
box-bounded search space. Useful when the stationary system of the
objective has no closed-form solutions.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchObjective, "objective", "", "Objective function (required)")
	searchCmd.Flags().IntVar(&searchNumVars, "vars", 1, "Number of variables")
	searchCmd.Flags().Float64Var(&searchLower, "lower", -10, "Lower bound of the search box")
	searchCmd.Flags().Float64Var(&searchUpper, "upper", 10, "Upper bound of the search box")
	searchCmd.Flags().IntVar(&searchIters, "iters", 100, "Max iterations")
	searchCmd.Flags().IntVar(&searchPopSize, "pop", 30, "Population size")
	searchCmd.Flags().Int64Var(&searchSeed, "seed", 42, "Random seed")

	searchCmd.MarkFlagRequired("objective")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchNumVars < 1 {
		return fmt.Errorf("number of variables must be positive, got %d", searchNumVars)
	}
	if searchLower >= searchUpper {
		return fmt.Errorf("lower bound %g must be below upper bound %g", searchLower, searchUpper)
	}

	expr, err := symbolic.Parse(searchObjective)
	if err != nil {
		return fmt.Errorf("objective: %w", err)
	}

	vars := make([]string, searchNumVars)
	for i := range vars {
		vars[i] = fmt.Sprintf("x_%d", i)
	}
	eval, err := symbolic.Compile(expr, vars)
	if err != nil {
		return fmt.Errorf("objective: %w", err)
	}

	lower := make([]float64, searchNumVars)
	upper := make([]float64, searchNumVars)
	for i := range lower {
		lower[i] = searchLower
		upper[i] = searchUpper
	}

	slog.Info("Starting global search",
		"objective", searchObjective,
		"vars", searchNumVars,
		"iters", searchIters,
		"pop", searchPopSize,
	)

	optimizer := opt.NewMayfly(searchIters, searchPopSize, searchSeed)

	start := time.Now()
	best, cost := optimizer.Run(eval, lower, upper, searchNumVars)
	elapsed := time.Since(start)

	slog.Info("Search complete", "elapsed", elapsed, "best_cost", cost)

	fmt.Printf("Best point: %s\n", formatPoint(best))
	fmt.Printf("Best value: %g\n", cost)
	return nil
}
