package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/output"
)

var (
	historyName          string
	historyUpdateEco     string
	historyUpdateInstall []string
	historyUpdateRemove  []string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Inspect or correct an environment's action log",
	}

	historyShowCmd = &cobra.Command{
		Use:   "show --name <env>",
		Short: "Show the action log",
		Example: `  envtrack history show --name demo`,
		RunE:  runHistoryShow,
	}

	historyUpdateCmd = &cobra.Command{
		Use:   "update --name <env> --eco <eco> [--install <specs>...] [--remove <packages>...]",
		Short: "Record a manual change as a user-asserted entry",
		Long: `Record packages that were installed or removed outside envtrack.

The history is append-only: corrections never rewrite past entries.
Instead a user-asserted entry is appended stating what the environment
now contains. Asserted entries carry no resolution of their own; give an
exact version (pandas=1.0.2) to pin, or a bare name to track at any
version.`,
		Example: `  # Declare a package that was installed manually
  envtrack history update --name demo --eco conda --install pandas=1.0.2

  # Declare a manual removal
  envtrack history update --name demo --eco pip --remove arcgis`,
		RunE: runHistoryUpdate,
	}
)

func init() {
	historyShowCmd.Flags().StringVar(&historyName, "name", "", "environment name (required)")
	historyShowCmd.MarkFlagRequired("name")

	historyUpdateCmd.Flags().StringVar(&historyName, "name", "", "environment name (required)")
	historyUpdateCmd.Flags().StringVar(&historyUpdateEco, "eco", "conda", "ecosystem: conda, pip or r")
	historyUpdateCmd.Flags().StringArrayVar(&historyUpdateInstall, "install", nil, "assert installed packages")
	historyUpdateCmd.Flags().StringArrayVar(&historyUpdateRemove, "remove", nil, "assert removed packages")
	historyUpdateCmd.MarkFlagRequired("name")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyUpdateCmd)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	env, err := loadTrackedEnv(historyName)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderHistoryTable(env.History))
	return nil
}

func runHistoryUpdate(cmd *cobra.Command, args []string) error {
	if len(historyUpdateInstall) == 0 && len(historyUpdateRemove) == 0 {
		return fmt.Errorf("nothing to assert: pass --install or --remove")
	}
	if len(historyUpdateInstall) > 0 && len(historyUpdateRemove) > 0 {
		return fmt.Errorf("--install and --remove need separate entries")
	}
	eco := history.Ecosystem(historyUpdateEco)
	switch eco {
	case history.EcoConda, history.EcoPip, history.EcoR:
	default:
		return fmt.Errorf("unknown ecosystem %q", historyUpdateEco)
	}
	env, err := loadTrackedEnv(historyName)
	if err != nil {
		return err
	}

	// The asserted command is written in the same grammar the file parser
	// reads back, so the entry round-trips like any other.
	verb, specs := "--install", historyUpdateInstall
	if len(historyUpdateRemove) > 0 {
		verb, specs = "--remove", historyUpdateRemove
	}
	log := fmt.Sprintf("%s --name %s --eco %s %s %s",
		history.AssertPrefix, historyName, eco, verb, strings.Join(specs, " "))

	debug := debugInfo()
	entry, err := history.ParseEntry(log, log, debug)
	if err != nil {
		return err
	}
	entry.Timestamp = env.History.NextTimestamp(time.Now())
	if err := env.History.Append(entry); err != nil {
		return err
	}
	if err := env.IO.WriteAll(env.History); err != nil {
		return err
	}
	fmt.Printf("Recorded user-asserted %s entry for %s\n", strings.TrimPrefix(verb, "--"), historyName)
	return nil
}
