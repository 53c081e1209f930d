package pm

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// Conda drives the primary ecosystem's package manager. It also owns the
// materialized environment lifecycle (create, delete, list).
type Conda struct {
	version string
}

// NewConda probes the conda version once; a missing conda is tolerated
// until an operation actually needs it.
func NewConda() *Conda {
	c := &Conda{}
	if out, err := exec.Command("conda", "--version").Output(); err == nil {
		fields := strings.Fields(string(out))
		if len(fields) == 2 {
			c.version = fields[1]
		}
	}
	return c
}

func (c *Conda) Ecosystem() history.Ecosystem { return history.EcoConda }

func (c *Conda) Version() string { return c.version }

// ResolveAndApply runs the conda operation and pins the outcome from
// `conda list`. Remove entries capture the versions that were installed
// at removal time so the action stays reproducible.
func (c *Conda) ResolveAndApply(op Operation) (*Result, error) {
	log := CondaCommand(op)

	if op.Kind == history.KindRemove {
		installed, err := c.ListInstalled(op.Env)
		if err != nil {
			return nil, err
		}
		resolved, err := pinRequested(op.Packages, installed)
		if err != nil {
			return nil, err
		}
		if _, err := runShell(log + " -y"); err != nil {
			return nil, fmt.Errorf("conda remove failed: %w", err)
		}
		return &Result{Log: log, Action: CondaAction(op, resolved), Resolved: resolved}, nil
	}

	if _, err := runShell(log + " -y"); err != nil {
		return nil, fmt.Errorf("conda %s failed: %w", op.Kind, err)
	}
	installed, err := c.ListInstalled(op.Env)
	if err != nil {
		return nil, err
	}
	var resolved []history.ResolvedSpec
	if op.All {
		for _, name := range op.Tracked {
			if r, ok := installed[name]; ok {
				resolved = append(resolved, r)
			}
		}
	} else {
		if resolved, err = pinRequested(op.Packages, installed); err != nil {
			return nil, err
		}
	}
	return &Result{Log: log, Action: CondaAction(op, resolved), Resolved: resolved}, nil
}

// Replay re-runs a pinned conda action. The action already names the
// environment and exact versions.
func (c *Conda) Replay(_ string, e history.Entry) error {
	if _, err := runShell(e.Action + " -y"); err != nil {
		return err
	}
	return nil
}

// ListInstalled parses `conda list` for conda-installed packages.
func (c *Conda) ListInstalled(env string) (map[string]history.ResolvedSpec, error) {
	out, err := runShell(fmt.Sprintf("conda list --name %s", env))
	if err != nil {
		return nil, fmt.Errorf("conda list failed: %w", err)
	}
	conda, _ := ParseCondaList(string(out))
	return conda, nil
}

// EnvExists parses `conda env list` for the environment name.
func (c *Conda) EnvExists(name string) (bool, error) {
	out, err := runShell("conda env list")
	if err != nil {
		return false, fmt.Errorf("conda env list failed: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Fields(line)[0] == name {
			return true, nil
		}
	}
	return false, nil
}

// DeleteEnv removes the materialized environment.
func (c *Conda) DeleteEnv(name string) error {
	if _, err := runShell(fmt.Sprintf("conda env remove -y --name %s", name)); err != nil {
		return fmt.Errorf("conda env remove %s failed: %w", name, err)
	}
	return nil
}

// CondaCommand renders the literal user command for the operation.
func CondaCommand(op Operation) string {
	var sb strings.Builder
	switch op.Kind {
	case history.KindCreate:
		sb.WriteString("conda create --name " + op.Env)
	case history.KindRemove:
		sb.WriteString("conda remove --name " + op.Env)
	case history.KindUpdate:
		sb.WriteString("conda update --name " + op.Env)
	default:
		sb.WriteString("conda install --name " + op.Env)
	}
	for _, p := range op.Packages {
		sb.WriteString(" " + p.Spec())
	}
	if op.All {
		sb.WriteString(" --all")
	}
	for _, ch := range op.Channels {
		sb.WriteString(" --channel " + ch)
	}
	if op.Kind == history.KindCreate && op.StrictChannelPriority {
		sb.WriteString(" --strict-channel-priority")
	}
	return sb.String()
}

// CondaAction renders the pinned action: the user command with every
// specifier replaced by its exact name=version=build pin.
func CondaAction(op Operation, resolved []history.ResolvedSpec) string {
	var sb strings.Builder
	switch op.Kind {
	case history.KindCreate:
		sb.WriteString("conda create --name " + op.Env)
	case history.KindRemove:
		sb.WriteString("conda remove --name " + op.Env)
	case history.KindUpdate:
		sb.WriteString("conda update --name " + op.Env)
	default:
		sb.WriteString("conda install --name " + op.Env)
	}
	for _, r := range resolved {
		sb.WriteString(" " + r.Pin(history.EcoConda))
	}
	if op.All {
		sb.WriteString(" --all")
	}
	for _, ch := range op.Channels {
		sb.WriteString(" --channel " + ch)
	}
	if op.Kind == history.KindCreate && op.StrictChannelPriority {
		sb.WriteString(" --strict-channel-priority")
	}
	return sb.String()
}

func pinRequested(specs []history.PackageSpec, installed map[string]history.ResolvedSpec) ([]history.ResolvedSpec, error) {
	resolved := make([]history.ResolvedSpec, 0, len(specs))
	for _, p := range specs {
		r, ok := installed[p.Name]
		if !ok {
			return nil, fmt.Errorf("package %q does not exist in the environment after the operation", p.Name)
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

// ParseCondaList parses `conda list` output into conda- and pip-installed
// package maps. Lines tagged pip/pypi in the last column belong to pip.
func ParseCondaList(out string) (conda, pip map[string]history.ResolvedSpec) {
	conda = make(map[string]history.ResolvedSpec)
	pip = make(map[string]history.ResolvedSpec)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.ToLower(fields[0])
		spec := history.ResolvedSpec{Name: name, Version: fields[1]}
		last := fields[len(fields)-1]
		if last == "pip" || last == "pypi" {
			pip[name] = spec
			continue
		}
		if len(fields) > 2 {
			spec.Build = fields[2]
		}
		if len(fields) > 3 {
			spec.Channel = fields[3]
		}
		conda[name] = spec
	}
	return conda, pip
}
