package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/rebuild"
)

var (
	rebuildName string

	rebuildCmd = &cobra.Command{
		Use:   "rebuild --name <env>",
		Short: "Recreate the environment from its history",
		Long: `Delete the materialized environment and replay every pinned action from
the history, in order, starting with the create action.

If a replay step fails, the error names the failing action and the
environment is left in its partial state for inspection.`,
		Example: `  envtrack rebuild --name demo`,
		RunE: runRebuild,
	}
)

func init() {
	rebuildCmd.Flags().StringVar(&rebuildName, "name", "", "environment name (required)")
	rebuildCmd.MarkFlagRequired("name")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	env, err := loadTrackedEnv(rebuildName)
	if err != nil {
		return err
	}
	if !decision()(fmt.Sprintf("Delete environment %s and replay its %d actions?", rebuildName, len(env.History.Entries))) {
		return fmt.Errorf("rebuild aborted")
	}

	bar := output.NewProgress(len(env.History.Entries), fmt.Sprintf("Rebuilding %s", rebuildName))
	err = rebuild.Rebuild(managers(), env.History, func(done, total int) {
		bar.Increment()
	})
	if err != nil {
		return err
	}
	bar.Finish()
	fmt.Printf("Rebuilt %s from %d actions\n", rebuildName, len(env.History.Entries))
	return nil
}
