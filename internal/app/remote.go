package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/envio"
)

var (
	remoteName string
	remoteShow bool

	remoteCmd = &cobra.Command{
		Use:   "remote --name <env> [dir]",
		Short: "Configure the environment's remote directory",
		Long: `Point the environment at a shared remote directory.

Without an argument the remote is inferred from the working directory: a
.envtrack directory in the current directory, or at the git repository
toplevel. The remote pointer is stored locally only and is never pushed,
so each machine keeps its own path to the shared directory.`,
		Example: `  # Inside the project repository
  envtrack remote --name demo

  # Explicit directory
  envtrack remote --name demo /work/project/.envtrack

  # Show the current remote
  envtrack remote --name demo --show`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRemote,
	}
)

func init() {
	remoteCmd.Flags().StringVar(&remoteName, "name", "", "environment name (required)")
	remoteCmd.Flags().BoolVar(&remoteShow, "show", false, "print the configured remote and exit")
	remoteCmd.MarkFlagRequired("name")
}

func runRemote(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(remoteName)
	if err != nil {
		return err
	}

	if remoteShow {
		dir, err := env.IO.RemoteDir()
		if err != nil {
			return err
		}
		fmt.Println(dir)
		return nil
	}

	var dir string
	if len(args) == 1 {
		dir, err = filepath.Abs(args[0])
		if err != nil {
			return err
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir, err = envio.InferRemoteDir(cwd, false)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create remote directory: %w", err)
	}
	if err := env.IO.SetRemoteDir(dir); err != nil {
		return err
	}
	fmt.Printf("Remote for %s set to %s\n", remoteName, dir)
	return nil
}
