package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Query server status or specific run",
	Long: `Queries the server for run status information.
If no run-id is provided, lists all runs.
If run-id is provided, shows detailed status for that run.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// List all runs
		url := fmt.Sprintf("%s/api/v1/runs", serverURL)
		return listServerRuns(url)
	}

	// Get specific run status
	runID := args[0]
	url := fmt.Sprintf("%s/api/v1/runs/%s/status", serverURL, runID)
	return getRunStatus(url, runID)
}

func listServerRuns(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var runs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("Found %d run(s):\n\n", len(runs))
	for _, run := range runs {
		fmt.Printf("Run ID: %s\n", run["id"])
		fmt.Printf("  State: %s\n", run["state"])
		config := run["config"].(map[string]interface{})
		fmt.Printf("  Method: %s\n", config["method"])
		fmt.Printf("  Objective: %s\n", config["objective"])
		if found, ok := run["found"].(bool); ok && found {
			fmt.Printf("  Value: %v\n", run["value"])
		}
		fmt.Println()
	}

	return nil
}

func getRunStatus(url, runID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("run not found: %s", runID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	// Display status
	fmt.Printf("Run: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Method: %s\n", config["method"])
		fmt.Printf("  Objective: %s\n", config["objective"])
		fmt.Printf("  Variables: %v\n", config["numVars"])
		if config["minimize"] == true {
			fmt.Println("  Direction: minimize")
		} else {
			fmt.Println("  Direction: maximize")
		}
		fmt.Println()
	}

	fmt.Println("Progress:")
	if found, ok := status["found"].(bool); ok && found {
		fmt.Printf("  Point: %v\n", status["point"])
		fmt.Printf("  Value: %v\n", status["value"])
	}
	if iters, ok := status["iterations"].(float64); ok && iters > 0 {
		fmt.Printf("  Iterations: %.0f\n", iters)
	}
	if gradNorm, ok := status["gradNorm"].(float64); ok && gradNorm > 0 {
		fmt.Printf("  Gradient norm: %g\n", gradNorm)
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("  Elapsed: %s\n", time.Duration(elapsed*float64(time.Second)).Round(time.Millisecond))
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
