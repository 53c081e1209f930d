package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	removeName string
	removeEco  string
	removeSync bool

	removeCmd = &cobra.Command{
		Use:   "remove --name <env> <packages>...",
		Short: "Remove packages and record the removal",
		Long: `Remove packages from a tracked environment.

The removal is recorded with the versions that were installed at removal
time, so the action stays reproducible. Removed packages disappear from
the derived manifests. Use --eco to remove pip or R packages.`,
		Example: `  # Remove a conda package
  envtrack remove --name demo pandas

  # Remove a pip package
  envtrack remove --name demo --eco pip arcgis`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRemove,
	}
)

func init() {
	removeCmd.Flags().StringVar(&removeName, "name", "", "environment name (required)")
	removeCmd.Flags().StringVar(&removeEco, "eco", "conda", "ecosystem: conda, pip or r")
	removeCmd.Flags().BoolVar(&removeSync, "sync", false, "push to the remote after removing")
	removeCmd.MarkFlagRequired("name")
}

func runRemove(cmd *cobra.Command, args []string) error {
	eco := history.Ecosystem(removeEco)
	switch eco {
	case history.EcoConda, history.EcoPip, history.EcoR:
	default:
		return fmt.Errorf("unknown ecosystem %q", removeEco)
	}
	specs, err := history.ParseSpecs(args, false)
	if err != nil {
		return err
	}
	env, err := loadTrackedEnv(removeName)
	if err != nil {
		return err
	}
	tracked := env.History.Latest()[eco]
	for _, spec := range specs {
		if _, ok := tracked[spec.Name]; !ok {
			return fmt.Errorf("%s is not tracked as a %s package in %s", spec.Name, eco, removeName)
		}
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := guardStale(st, env); err != nil {
		return err
	}

	op := pm.Operation{
		Env:      removeName,
		Kind:     history.KindRemove,
		Packages: specs,
	}
	if err := applyOperation(env, eco, op); err != nil {
		return err
	}
	fmt.Printf("Removed %d package(s) from %s\n", len(specs), removeName)

	if removeSync {
		return pushAfterChange(env)
	}
	return nil
}
