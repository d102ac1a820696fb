package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath string

	// RootCmd is the root command for pooltrack
	RootCmd = &cobra.Command{
		Use:   "pooltrack",
		Short: "Diagnose kernel pool leaks by tracking pool-tag growth",
		Long: `pooltrack samples the kernel pool-tag allocation table at a fixed
interval and classifies which tags grow monotonically across the run,
the signature of a slow kernel memory leak.

A large tag is not a leaking tag: filesystems and graphics drivers hold
hundreds of megabytes of pool at steady state. pooltrack separates the
merely large from the actively growing by requiring growth at (nearly)
every sample, tolerating only small allocator jitter.

Sessions persist to a local database, so an overnight run can be
re-analyzed at any time.

Quick Start:
  1. pooltrack snapshot              # one-shot look at the biggest tags
  2. pooltrack track                 # sample for 10 minutes (30s × 20)
  3. pooltrack report                # re-print the latest session's analysis

Examples:
  # Long overnight hunt: one sample a minute for 8 hours
  pooltrack track --interval 60 --samples 480 --note "overnight"

  # Only track tags holding at least 4 MB
  pooltrack track --threshold 4MB

  # Review an earlier session
  pooltrack sessions
  pooltrack report --session 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := getDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("pooltrack: kernel pool-tag leak tracking")
				fmt.Println()
				fmt.Println("Run 'pooltrack snapshot' to see where pool memory sits right now.")
				fmt.Println("Run 'pooltrack track' to start hunting for a leak.")
				fmt.Println("Run 'pooltrack --help' for the full reference.")
			} else {
				fmt.Println("pooltrack: kernel pool-tag leak tracking")
				fmt.Println()
				fmt.Println("Tip: Run 'pooltrack report' to re-print the latest session's analysis.")
				fmt.Println("     Run 'pooltrack sessions' to list recorded sessions.")
				fmt.Println("     Run 'pooltrack --help' for all commands.")
			}
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.pooltrack/pooltrack.db)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".pooltrack")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pooltrack directory: %w", err)
	}

	return filepath.Join(dir, "pooltrack.db"), nil
}
