package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
)

var (
	inferName     string
	inferChannels []string

	inferCmd = &cobra.Command{
		Use:   "infer --name <env> <packages>...",
		Short: "Start tracking an existing conda environment",
		Long: `Bootstrap tracking for a conda environment that was created without
envtrack.

You name the packages you consider top-level; their installed versions
are read from the environment and recorded as a synthetic create entry
(plus a pip entry for pip-installed packages). Nothing is run against
the environment.`,
		Example: `  # Track an existing environment
  envtrack infer --name legacy python pandas arcgis`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInfer,
	}
)

func init() {
	inferCmd.Flags().StringVar(&inferName, "name", "", "environment name (required)")
	inferCmd.Flags().StringArrayVarP(&inferChannels, "channel", "c", nil, "conda channel to record (repeatable)")
	inferCmd.MarkFlagRequired("name")
}

func runInfer(cmd *cobra.Command, args []string) error {
	specs, err := history.ParseSpecs(args, false)
	if err != nil {
		return err
	}
	existing, err := loadEnv(inferName)
	if err != nil {
		return err
	}
	if existing.History != nil {
		return fmt.Errorf("environment %s is already tracked", inferName)
	}
	root, err := trackerRoot()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	env, err := newEngine(st).Infer(root, inferName, specs, inferChannels)
	if err != nil {
		return err
	}
	fmt.Printf("Now tracking %s (%d actions inferred)\n", inferName, len(env.History.Entries))
	return nil
}
