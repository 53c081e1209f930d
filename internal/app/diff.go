package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/snapshot"
)

var (
	diffName string

	diffCmd = &cobra.Command{
		Use:   "diff --name <env>",
		Short: "Show package differences between remote and local",
		Long: `Compare the remote snapshot against the local one and show what a pull
would change: packages only in the remote (+), packages only local (-),
and diverging pins (~).`,
		Example: `  envtrack diff --name demo`,
		RunE: runDiff,
	}
)

func init() {
	diffCmd.Flags().StringVar(&diffName, "name", "", "environment name (required)")
	diffCmd.MarkFlagRequired("name")
}

func runDiff(cmd *cobra.Command, args []string) error {
	env, err := loadTrackedEnv(diffName)
	if err != nil {
		return err
	}
	remoteDir, err := env.IO.RemoteDir()
	if err != nil {
		return err
	}
	remoteHist, err := envio.New(remoteDir).ReadHistory()
	if err != nil {
		return err
	}
	if remoteHist == nil {
		return fmt.Errorf("remote %s has no history for %s yet", remoteDir, diffName)
	}

	local := snapshot.Build(env.History)
	remote := snapshot.Build(remoteHist)
	fmt.Print(output.RenderDiff(snapshot.Compare(local, remote)))
	return nil
}
