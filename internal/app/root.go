package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version is stamped into every history entry's debug block.
const Version = "1.0.0"

var (
	rootDir   string
	assumeYes bool

	// RootCmd is the root command for envtrack
	RootCmd = &cobra.Command{
		Use:   "envtrack",
		Short: "Declarative environment tracking for conda, pip and R",
		Long: `envtrack records every package operation you run against a conda
environment in an append-only history, derives a declarative manifest
(conda-env.yaml, install.R) from it, and keeps the history in sync with
a shared remote directory inside your project repository.

Every command you run through envtrack is executed against the real
environment and then logged with its fully pinned outcome, so the
environment can be rebuilt exactly, anywhere, from the history alone.

Quick Start:
  1. envtrack create --name demo python=3.10
  2. envtrack install --name demo pandas
  3. envtrack remote            # inside your project repository
  4. envtrack push --name demo

Examples:
  # Create and track a new environment
  envtrack create --name demo python=3.10 pandas

  # Install more packages through the tracker
  envtrack install --name demo requests
  envtrack pip install --name demo arcgis

  # Share with teammates via the project repository
  envtrack remote
  envtrack sync --name demo

  # Recreate the environment from its history
  envtrack rebuild --name demo`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("envtrack: declarative environment tracking for conda, pip and R")
			fmt.Println()
			fmt.Println("Run 'envtrack create --name <env> <specs>' to start tracking.")
			fmt.Println("Run 'envtrack --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&rootDir, "dir", "", "tracker root directory (default: ~/.envtrack)")
	RootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "assume yes for every prompt")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(inferCmd)
	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(pipCmd)
	RootCmd.AddCommand(rCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(rebuildCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(remoteCmd)
	RootCmd.AddCommand(pullCmd)
	RootCmd.AddCommand(pushCmd)
	RootCmd.AddCommand(syncCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// trackerRoot returns the tracker root directory, creating it if needed.
func trackerRoot() (string, error) {
	dir := rootDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".envtrack")
	}
	if err := os.MkdirAll(filepath.Join(dir, "envs"), 0755); err != nil {
		return "", fmt.Errorf("failed to create tracker directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the sync-state database path under the tracker root.
func getDBPath() (string, error) {
	dir, err := trackerRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "envtrack.db"), nil
}

// getDefaultPIDFile returns the watch daemon's PID file path.
func getDefaultPIDFile() (string, error) {
	dir, err := trackerRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the watch daemon's log file path.
func getDefaultLogFile() (string, error) {
	dir, err := trackerRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}
