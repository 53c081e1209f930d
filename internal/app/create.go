package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/pm"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
)

var (
	createName     string
	createChannels []string
	createStrict   bool
	createSync     bool

	createCmd = &cobra.Command{
		Use:   "create --name <env> <specs>...",
		Short: "Create a conda environment and start tracking it",
		Long: `Create a new conda environment and record the create operation as the
first entry of its history.

The environment is created with conda, the resolved versions of the
requested packages are read back from the environment, and the pinned
create action becomes the root of the append-only history. The derived
conda-env.yaml manifest is written alongside it.`,
		Example: `  # Create a python environment
  envtrack create --name demo python=3.10

  # Create with extra packages and a channel
  envtrack create --name demo --channel conda-forge python=3.10 pandas`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCreate,
	}
)

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "environment name (required)")
	createCmd.Flags().StringArrayVarP(&createChannels, "channel", "c", nil, "extra conda channel (repeatable)")
	createCmd.Flags().BoolVar(&createStrict, "strict-channel-priority", false, "pass --strict-channel-priority to conda create")
	createCmd.Flags().BoolVar(&createSync, "sync", false, "push to the remote after creating")
	createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	specs, err := history.ParseSpecs(args, false)
	if err != nil {
		return err
	}
	env, err := loadEnv(createName)
	if err != nil {
		return err
	}
	if env.History != nil {
		return fmt.Errorf("environment %s is already tracked; use 'envtrack install' or remove it first", createName)
	}

	op := pm.Operation{
		Env:                   createName,
		Kind:                  history.KindCreate,
		Packages:              specs,
		Channels:              createChannels,
		StrictChannelPriority: createStrict,
	}
	mgr := managers()[history.EcoConda]

	spinner := output.NewSpinner("Creating environment " + createName)
	spinner.Start()
	res, err := mgr.ResolveAndApply(op)
	spinner.Stop()
	if err != nil {
		return err
	}

	h := history.New(createName, createChannels)
	entry := history.Entry{
		Ecosystem: history.EcoConda,
		Kind:      history.KindCreate,
		Log:       res.Log,
		Action:    res.Action,
		Requested: specs,
		Resolved:  res.Resolved,
		Timestamp: h.NextTimestamp(time.Now()),
		Debug:     debugInfo(),
	}
	if err := h.Append(entry); err != nil {
		return err
	}
	env.History = h
	if err := env.IO.WriteAll(h); err != nil {
		return err
	}
	fmt.Printf("Created environment %s (%d packages pinned)\n", createName, len(res.Resolved))

	if createSync {
		return pushAfterChange(env)
	}
	return nil
}

// pushAfterChange pushes the updated history when a remote is configured.
func pushAfterChange(env *reconcile.Environment) error {
	if !env.IO.HasRemote() {
		return fmt.Errorf("no remote configured for %s; run 'envtrack remote' inside the project first", env.Name)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return newEngine(st).Push(env)
}
