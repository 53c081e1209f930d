package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pushName string

	pushCmd = &cobra.Command{
		Use:   "push --name <env>",
		Short: "Publish the local history to the remote",
		Long: `Copy the local history and derived manifests to the remote directory.

The push is rejected when the remote holds actions the local history
does not include; pull first to integrate them.`,
		Example: `  envtrack push --name demo`,
		RunE: runPush,
	}
)

func init() {
	pushCmd.Flags().StringVar(&pushName, "name", "", "environment name (required)")
	pushCmd.MarkFlagRequired("name")
}

func runPush(cmd *cobra.Command, args []string) error {
	env, err := loadTrackedEnv(pushName)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := newEngine(st).Push(env); err != nil {
		return err
	}
	remoteDir, _ := env.IO.RemoteDir()
	fmt.Printf("Pushed %s to %s\n", pushName, remoteDir)
	return nil
}
