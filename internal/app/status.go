package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
)

var (
	statusName   string
	statusEvents int

	statusCmd = &cobra.Command{
		Use:   "status [--name <env>]",
		Short: "Show sync status against the remote",
		Long: `Report whether each tracked environment is in sync with its remote.

The check uses file sizes and the cached remote observation only; the
history files themselves are not read. Use --events to also show the
recent sync journal for one environment.`,
		Example: `  # All environments
  envtrack status

  # One environment with its recent sync events
  envtrack status --name demo --events 10`,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().StringVar(&statusName, "name", "", "environment name")
	statusCmd.Flags().IntVar(&statusEvents, "events", 0, "show the last N sync events")
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	eng := newEngine(st)

	names := []string{statusName}
	if statusName == "" {
		names, err = envNames()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No tracked environments.")
			return nil
		}
	}

	for _, name := range names {
		env, err := loadEnv(name)
		if err != nil {
			return err
		}
		remoteDir, rerr := env.IO.RemoteDir()
		if rerr != nil {
			fmt.Print(output.RenderStatus(name, reconcile.StatusUnknown, ""))
			continue
		}
		status, err := eng.Status(env)
		if err != nil {
			return err
		}
		fmt.Print(output.RenderStatus(name, status, remoteDir))
	}

	if statusName != "" && statusEvents > 0 {
		events, err := st.ListSyncEvents(statusName, statusEvents)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(output.RenderEventTable(events))
	}
	return nil
}
