package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

var (
	rmName string

	rmCmd = &cobra.Command{
		Use:   "rm --name <env>",
		Short: "Delete an environment and its local tracking state",
		Long: `Delete the materialized conda environment and the local tracking
directory. The remote copy, if any, is left untouched so teammates keep
their history.`,
		Example: `  envtrack rm --name demo`,
		RunE: runRm,
	}
)

func init() {
	rmCmd.Flags().StringVar(&rmName, "name", "", "environment name (required)")
	rmCmd.MarkFlagRequired("name")
}

func runRm(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(rmName)
	if err != nil {
		return err
	}
	if !decision()(fmt.Sprintf("Delete environment %s and its local history?", rmName)) {
		return fmt.Errorf("rm aborted")
	}

	if lc, ok := managers()[history.EcoConda].(pm.EnvLifecycle); ok {
		exists, err := lc.EnvExists(rmName)
		if err != nil {
			return err
		}
		if exists {
			if err := lc.DeleteEnv(rmName); err != nil {
				return err
			}
		}
	}
	if err := env.IO.Delete(); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.DeleteObservation(rmName); err != nil {
		return err
	}

	fmt.Printf("Deleted environment %s\n", rmName)
	return nil
}
