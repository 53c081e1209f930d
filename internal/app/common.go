package app

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/output"
	"github.com/blackwell-systems/envtrack/internal/pm"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// managerSet is lazily constructed so tests can inject fakes before any
// command runs.
var managerSet pm.Set

func managers() pm.Set {
	if managerSet == nil {
		managerSet = pm.DefaultSet()
	}
	return managerSet
}

func debugInfo() history.DebugInfo {
	return pm.CollectDebug(managers(), Version)
}

// openStore opens the sync-state database under the tracker root and
// ensures the schema exists.
func openStore() (*store.Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return db, nil
}

// decision returns the prompt policy: --yes approves everything, a
// non-TTY stdin declines everything, otherwise the user is asked.
func decision() reconcile.Decision {
	if assumeYes {
		return reconcile.AlwaysYes
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return reconcile.AlwaysNo
	}
	return func(question string) bool {
		fmt.Printf("%s [y/N]: ", question)
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// newEngine wires the reconciliation engine with the command's store and
// prompt policy.
func newEngine(st *store.Store) *reconcile.Engine {
	return &reconcile.Engine{
		Managers: managers(),
		Store:    st,
		Decide:   decision(),
		Debug:    debugInfo(),
	}
}

// loadEnv opens the named environment under the tracker root.
func loadEnv(name string) (*reconcile.Environment, error) {
	if name == "" {
		return nil, fmt.Errorf("missing --name")
	}
	root, err := trackerRoot()
	if err != nil {
		return nil, err
	}
	return reconcile.LoadEnvironment(root, name)
}

// loadTrackedEnv is loadEnv plus the requirement that a history exists.
func loadTrackedEnv(name string) (*reconcile.Environment, error) {
	env, err := loadEnv(name)
	if err != nil {
		return nil, err
	}
	if _, err := env.MustHistory(); err != nil {
		return nil, err
	}
	return env, nil
}

// envNames lists the tracked environment names under the tracker root.
func envNames() ([]string, error) {
	root, err := trackerRoot()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root + "/envs")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// guardStale warns when the environment is behind its remote before a
// mutating operation, and offers to pull first.
func guardStale(st *store.Store, env *reconcile.Environment) error {
	if !env.IO.HasRemote() {
		return nil
	}
	eng := newEngine(st)
	status, err := eng.Status(env)
	if err != nil {
		return nil
	}
	if status != reconcile.StatusLocalBehind {
		return nil
	}
	if !eng.Decide(fmt.Sprintf("Environment %s is behind its remote. Pull before continuing?", env.Name)) {
		return nil
	}
	return eng.Pull(env)
}

// applyOperation runs one package operation against the environment,
// appends the pinned outcome to the history and rewrites the derived
// files.
func applyOperation(env *reconcile.Environment, eco history.Ecosystem, op pm.Operation) error {
	h, err := env.MustHistory()
	if err != nil {
		return err
	}
	mgr, ok := managers()[eco]
	if !ok {
		return fmt.Errorf("no %s package manager configured", eco)
	}

	if op.All {
		for name := range h.Latest()[eco] {
			op.Tracked = append(op.Tracked, name)
		}
		sort.Strings(op.Tracked)
	}

	spinner := output.NewSpinner(fmt.Sprintf("Running %s %s", eco, op.Kind))
	spinner.Start()
	res, err := mgr.ResolveAndApply(op)
	spinner.Stop()
	if err != nil {
		return err
	}

	entry := history.Entry{
		Ecosystem: eco,
		Kind:      op.Kind,
		Log:       res.Log,
		Action:    res.Action,
		Requested: op.Packages,
		Resolved:  res.Resolved,
		Timestamp: h.NextTimestamp(time.Now()),
		Debug:     debugInfo(),
	}
	if err := h.Append(entry); err != nil {
		return err
	}
	h.AppendChannels(op.Channels)
	return env.IO.WriteAll(h)
}
