package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	installName     string
	installChannels []string
	installSync     bool

	installCmd = &cobra.Command{
		Use:   "install --name <env> <specs>...",
		Short: "Install conda packages and record the operation",
		Long: `Install conda packages into a tracked environment.

The literal command is appended to the history together with its fully
pinned outcome, and the derived conda-env.yaml is rewritten. Installing a
package that is already tracked replaces its pin with the new one.`,
		Example: `  # Install a package
  envtrack install --name demo pandas

  # Install with a version constraint and a channel
  envtrack install --name demo --channel conda-forge "pandas>=1.5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstall,
	}
)

func init() {
	installCmd.Flags().StringVar(&installName, "name", "", "environment name (required)")
	installCmd.Flags().StringArrayVarP(&installChannels, "channel", "c", nil, "extra conda channel (repeatable)")
	installCmd.Flags().BoolVar(&installSync, "sync", false, "push to the remote after installing")
	installCmd.MarkFlagRequired("name")
}

func runInstall(cmd *cobra.Command, args []string) error {
	specs, err := history.ParseSpecs(args, false)
	if err != nil {
		return err
	}
	env, err := loadTrackedEnv(installName)
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
		Env:      installName,
		Kind:     history.KindInstall,
		Packages: specs,
		Channels: installChannels,
	}
	if err := applyOperation(env, history.EcoConda, op); err != nil {
		return err
	}
	fmt.Printf("Installed %d package(s) into %s\n", len(specs), installName)

	if installSync {
		return pushAfterChange(env)
	}
	return nil
}
