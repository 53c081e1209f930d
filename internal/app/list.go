package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/snapshot"
)

var (
	listName string

	listCmd = &cobra.Command{
		Use:   "list [--name <env>]",
		Short: "List tracked environments or the packages of one",
		Long: `Without --name, list every tracked environment under the tracker root.
With --name, show the environment's declarative snapshot: the
user-requested packages with their current pins, per ecosystem.`,
		Example: `  # All tracked environments
  envtrack list

  # Packages of one environment
  envtrack list --name demo`,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().StringVar(&listName, "name", "", "environment name")
}

func runList(cmd *cobra.Command, args []string) error {
	if listName == "" {
		names, err := envNames()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No tracked environments.")
			return nil
		}
		for _, name := range names {
			env, err := loadEnv(name)
			if err != nil || env.History == nil {
				continue
			}
			remote := "no remote"
			if dir, err := env.IO.RemoteDir(); err == nil {
				remote = dir
			}
			fmt.Printf("%-24s %3d actions  %s\n", name, len(env.History.Entries), remote)
		}
		return nil
	}

	env, err := loadTrackedEnv(listName)
	if err != nil {
		return err
	}
	snap := snapshot.Build(env.History)
	fmt.Print(output.RenderPackageTable(snap))
	return nil
}
