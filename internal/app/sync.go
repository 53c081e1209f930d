package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	syncName string

	syncCmd = &cobra.Command{
		Use:   "sync --name <env>",
		Short: "Pull then push, converging local and remote",
		Long: `Run pull followed by push so both sides end on the same history.

A version conflict aborts before anything is written; settle it with
'envtrack history update' and sync again.`,
		Example: `  envtrack sync --name demo`,
		RunE: runSync,
	}
)

func init() {
	syncCmd.Flags().StringVar(&syncName, "name", "", "environment name (required)")
	syncCmd.MarkFlagRequired("name")
}

func runSync(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(syncName)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := newEngine(st).Sync(env); err != nil {
		return err
	}
	fmt.Printf("%s and its remote are in sync\n", syncName)
	return nil
}
