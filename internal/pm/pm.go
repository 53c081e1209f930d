// Package pm shells out to the underlying package managers (conda, pip
// inside the environment, R). Adapters never resolve anything themselves:
// they run the user's operation, then read back what the package manager
// reports as installed. All invocations block with no internal timeout.
package pm

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// Operation is a semantic package operation to resolve and apply.
type Operation struct {
	Env      string
	Kind     history.Kind
	Packages []history.PackageSpec
	Channels []string
	// IndexURLs applies to pip operations only.
	IndexURLs []string
	// All marks 'update --all'. Tracked then lists the package names whose
	// pins the resulting entry must capture.
	All     bool
	Tracked []string
	// StrictChannelPriority applies to conda create.
	StrictChannelPriority bool
}

// Result is what a successful apply produced: the literal command, the
// fully pinned reproducible command and the resolved specifiers.
type Result struct {
	Log      string
	Action   string
	Resolved []history.ResolvedSpec
}

// Manager is one ecosystem's package-manager adapter.
type Manager interface {
	Ecosystem() history.Ecosystem
	// ResolveAndApply runs the operation against the materialized
	// environment and reports the pinned outcome. Failures are surfaced
	// verbatim and never retried.
	ResolveAndApply(op Operation) (*Result, error)
	// Replay re-applies a history entry using its pinned action command.
	Replay(env string, e history.Entry) error
	// ListInstalled reports the installed (package, version) set.
	ListInstalled(env string) (map[string]history.ResolvedSpec, error)
	// Version reports the package manager's own version, or "" if it
	// cannot be determined.
	Version() string
}

// EnvLifecycle creates and destroys materialized environments. Only the
// primary ecosystem's manager owns the environment itself.
type EnvLifecycle interface {
	EnvExists(name string) (bool, error)
	DeleteEnv(name string) error
}

// Set holds the adapters keyed by ecosystem.
type Set map[history.Ecosystem]Manager

// DefaultSet wires the real conda/pip/R adapters.
func DefaultSet() Set {
	conda := NewConda()
	return Set{
		history.EcoConda: conda,
		history.EcoPip:   NewPip(),
		history.EcoR:     NewR(),
	}
}

// Replay applies entries strictly in order via each entry's adapter.
// It returns the number of entries applied; on failure the already-applied
// entries stay applied (the package managers provide no multi-entry
// transaction) and the error names the failing entry.
func (s Set) Replay(env string, entries []history.Entry) (int, error) {
	for i, e := range entries {
		mgr, ok := s[e.Ecosystem]
		if !ok {
			return i, fmt.Errorf("no %s package manager configured for entry %q", e.Ecosystem, e.Log)
		}
		if err := mgr.Replay(env, e); err != nil {
			return i, fmt.Errorf("replaying %q: %w", e.Action, err)
		}
	}
	return len(entries), nil
}

// CollectDebug assembles the per-entry diagnostics block: platform name
// and package-manager versions as probed at startup.
func CollectDebug(set Set, toolVersion string) history.DebugInfo {
	d := history.DebugInfo{Platform: PlatformName(), ToolVersion: toolVersion}
	if m, ok := set[history.EcoConda]; ok {
		d.CondaVersion = m.Version()
	}
	if m, ok := set[history.EcoPip]; ok {
		d.PipVersion = m.Version()
	}
	return d
}

// PlatformName is the short platform tag recorded in history debug
// sections: osx, win or linux.
func PlatformName() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	case "windows":
		return "win"
	}
	return "linux"
}

// runShell runs a composed command line through the shell. Actions are
// stored as full command strings, so replay needs shell word splitting.
func runShell(command string) ([]byte, error) {
	cmd := exec.Command("sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%q failed: %w (output: %s)", command, err, string(out))
	}
	return out, nil
}
