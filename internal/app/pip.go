package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	pipName      string
	pipIndexURLs []string
	pipCustom    string
	pipSync      bool

	pipCmd = &cobra.Command{
		Use:   "pip",
		Short: "Track pip packages inside the environment",
	}

	pipInstallCmd = &cobra.Command{
		Use:   "install --name <env> <specs>...",
		Short: "Install pip packages and record the operation",
		Long: `Install pip packages into a tracked environment, using the pip inside
the environment itself.

Installed versions are pinned with ==. A --custom url records a direct
installation source (for example a VCS url); custom packages keep their
url in the history and the derived manifest instead of an index pin.`,
		Example: `  # Install from the default index
  envtrack pip install --name demo arcgis

  # Install from a direct url
  envtrack pip install --name demo mypkg --custom https://github.com/org/mypkg/archive/main.zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPipInstall,
	}
)

func init() {
	pipInstallCmd.Flags().StringVar(&pipName, "name", "", "environment name (required)")
	pipInstallCmd.Flags().StringArrayVar(&pipIndexURLs, "index-url", nil, "extra pip index url (repeatable)")
	pipInstallCmd.Flags().StringVar(&pipCustom, "custom", "", "direct installation url for a single package")
	pipInstallCmd.Flags().BoolVar(&pipSync, "sync", false, "push to the remote after installing")
	pipInstallCmd.MarkFlagRequired("name")
	pipCmd.AddCommand(pipInstallCmd)
}

func runPipInstall(cmd *cobra.Command, args []string) error {
	specs, err := history.ParseSpecs(args, pipCustom == "")
	if err != nil {
		return err
	}
	if pipCustom != "" {
		if len(specs) != 1 {
			return fmt.Errorf("--custom applies to exactly one package, got %d", len(specs))
		}
		specs[0].Custom = pipCustom
	}
	env, err := loadTrackedEnv(pipName)
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
		Env:       pipName,
		Kind:      history.KindInstall,
		Packages:  specs,
		IndexURLs: pipIndexURLs,
	}
	if err := applyOperation(env, history.EcoPip, op); err != nil {
		return err
	}
	fmt.Printf("Installed %d pip package(s) into %s\n", len(specs), pipName)

	if pipSync {
		return pushAfterChange(env)
	}
	return nil
}
