package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pullName string

	pullCmd = &cobra.Command{
		Use:   "pull --name <env>",
		Short: "Integrate remote history into the local environment",
		Long: `Pull the remote history and bring the local environment up to date.

Remote-only actions are replayed in order against the real environment,
then the local history and manifests are replaced with the remote's.
When both sides added actions, the local extras are re-applied on top of
the remote history, unless the same package resolved to different
versions on each side; that conflict aborts the pull and must be settled
with 'envtrack history update'.`,
		Example: `  envtrack pull --name demo`,
		RunE: runPull,
	}
)

func init() {
	pullCmd.Flags().StringVar(&pullName, "name", "", "environment name (required)")
	pullCmd.MarkFlagRequired("name")
}

func runPull(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(pullName)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := newEngine(st).Pull(env); err != nil {
		return err
	}
	fmt.Printf("%s is up to date with its remote\n", pullName)
	return nil
}
