package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchStatus      bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch remote directories for history changes",
		Long: `Watch every environment's remote directory and report environments that
fall behind.

In the foreground the watcher prints a notice whenever a remote history
file changes and the local copy is stale. With --daemon it keeps running
in the background and records stale environments in the sync journal,
where 'envtrack status --events' can show them.`,
		Example: `  # Watch in the foreground
  envtrack watch

  # Start the background daemon
  envtrack watch --daemon

  # Stop it
  envtrack watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run in the background")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal: run as the daemon child process")
	watchCmd.Flags().MarkHidden("daemon-child")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop the background daemon")
	watchCmd.Flags().BoolVar(&watchStatus, "status", false, "report whether the daemon is running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return err
	}

	if watchStop {
		if err := watcher.StopDaemon(pidFile); err != nil {
			return err
		}
		fmt.Println("Watch daemon stopped.")
		return nil
	}
	if watchStatus {
		running, err := watcher.IsDaemonRunning(pidFile)
		if err != nil {
			return err
		}
		if running {
			fmt.Println("Watch daemon is running.")
		} else {
			fmt.Println("Watch daemon is not running.")
		}
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	targets, err := watchTargets()
	if err != nil {
		return err
	}
	w, err := watcher.New(st, targets)
	if err != nil {
		return err
	}

	if watchDaemon {
		logFile, err := getDefaultLogFile()
		if err != nil {
			return err
		}
		if err := w.StartDaemon(pidFile, logFile); err != nil {
			return err
		}
		fmt.Printf("Watch daemon started (%d environments, log: %s)\n", len(targets), logFile)
		return nil
	}
	if watchDaemonChild {
		return w.RunDaemon(pidFile)
	}

	fmt.Printf("Watching %d environment(s); press Ctrl-C to stop\n", len(targets))
	return w.RunDaemon(pidFile)
}

// watchTargets collects every tracked environment with a configured
// remote.
func watchTargets() ([]watcher.Target, error) {
	names, err := envNames()
	if err != nil {
		return nil, err
	}
	var targets []watcher.Target
	for _, name := range names {
		env, err := loadEnv(name)
		if err != nil {
			continue
		}
		dir, err := env.IO.RemoteDir()
		if err != nil {
			continue
		}
		targets = append(targets, watcher.Target{
			Env:    name,
			Local:  env.IO,
			Remote: envio.New(dir),
		})
	}
	return targets, nil
}
