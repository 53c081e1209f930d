package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	updateName     string
	updateAll      bool
	updateChannels []string
	updateSync     bool

	updateCmd = &cobra.Command{
		Use:   "update --name <env> [--all | <specs>...]",
		Short: "Update conda packages and record the new pins",
		Long: `Update conda packages in a tracked environment.

With specifiers, only those packages are updated. With --all, conda
updates everything and the entry captures the refreshed pins of every
tracked package; untracked transitive dependencies stay out of the
history. Replaying an --all entry re-applies the captured pins and never
re-resolves.`,
		Example: `  # Update one package
  envtrack update --name demo pandas

  # Update everything tracked
  envtrack update --name demo --all`,
		RunE: runUpdate,
	}
)

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "environment name (required)")
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "update all packages, re-pinning the tracked ones")
	updateCmd.Flags().StringArrayVarP(&updateChannels, "channel", "c", nil, "extra conda channel (repeatable)")
	updateCmd.Flags().BoolVar(&updateSync, "sync", false, "push to the remote after updating")
	updateCmd.MarkFlagRequired("name")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if !updateAll && len(args) == 0 {
		return fmt.Errorf("nothing to update: pass package specifiers or --all")
	}
	if updateAll && len(args) > 0 {
		return fmt.Errorf("--all cannot be combined with package specifiers")
	}
	specs, err := history.ParseSpecs(args, false)
	if err != nil {
		return err
	}
	env, err := loadTrackedEnv(updateName)
	if err != nil {
		return err
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
		Env:      updateName,
		Kind:     history.KindUpdate,
		Packages: specs,
		Channels: updateChannels,
		All:      updateAll,
	}
	if err := applyOperation(env, history.EcoConda, op); err != nil {
		return err
	}
	if updateAll {
		fmt.Printf("Updated %s; tracked pins refreshed\n", updateName)
	} else {
		fmt.Printf("Updated %d package(s) in %s\n", len(specs), updateName)
	}

	if updateSync {
		return pushAfterChange(env)
	}
	return nil
}
