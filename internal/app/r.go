package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	rName     string
	rPackages []string
	rCommands []string
	rSync     bool

	rCmd = &cobra.Command{
		Use:   "r",
		Short: "Track R packages inside the environment",
	}

	rInstallCmd = &cobra.Command{
		Use:   "install --name <env> --package <name> --command <install command>",
		Short: "Run R install commands and record them",
		Long: `Run R install commands inside the environment and record them.

R has no resolver envtrack can query, so the specifier is the whole
install command. Each --package pairs with the --command at the same
position; the commands are joined and run in one R session, and the
installation is verified against installed.packages() afterwards. The
derived install.R script replays the surviving commands in install
order.`,
		Example: `  # Install one R package
  envtrack r install --name demo --package jsonlite --command 'install.packages("jsonlite")'

  # Pin a version via remotes
  envtrack r install --name demo --package trelliscopejs \
      --command 'remotes::install_version("trelliscopejs", version = "0.1.18", dependencies = TRUE)'`,
		RunE: runRInstall,
	}
)

func init() {
	rInstallCmd.Flags().StringVar(&rName, "name", "", "environment name (required)")
	rInstallCmd.Flags().StringArrayVar(&rPackages, "package", nil, "R package name (repeatable, pairs with --command)")
	rInstallCmd.Flags().StringArrayVar(&rCommands, "command", nil, "R install command (repeatable, pairs with --package)")
	rInstallCmd.Flags().BoolVar(&rSync, "sync", false, "push to the remote after installing")
	rInstallCmd.MarkFlagRequired("name")
	rInstallCmd.MarkFlagRequired("package")
	rInstallCmd.MarkFlagRequired("command")
	rCmd.AddCommand(rInstallCmd)
}

func runRInstall(cmd *cobra.Command, args []string) error {
	specs, err := history.RSpecs(rPackages, rCommands)
	if err != nil {
		return err
	}
	env, err := loadTrackedEnv(rName)
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
		Env:      rName,
		Kind:     history.KindInstall,
		Packages: specs,
	}
	if err := applyOperation(env, history.EcoR, op); err != nil {
		return err
	}
	fmt.Printf("Installed %d R package(s) into %s\n", len(specs), rName)

	if rSync {
		return pushAfterChange(env)
	}
	return nil
}
