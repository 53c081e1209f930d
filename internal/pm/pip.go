package pm

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// DefaultIndexURL is recorded in actions when the user gave no index url,
// so replays on another machine hit the same index.
const DefaultIndexURL = "https://pypi.org/simple"

// Pip drives the secondary ecosystem. Commands run inside the environment
// via `conda run`, so the environment's own pip is used.
type Pip struct{}

func NewPip() *Pip { return &Pip{} }

func (p *Pip) Ecosystem() history.Ecosystem { return history.EcoPip }

func (p *Pip) Version() string {
	out, err := runShell("pip --version")
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (p *Pip) ResolveAndApply(op Operation) (*Result, error) {
	log := PipCommand(op)
	run := pipRunCommand(op)
	if _, err := runShell(inEnv(op.Env, run)); err != nil {
		return nil, fmt.Errorf("pip %s failed: %w", op.Kind, err)
	}
	if op.Kind == history.KindRemove {
		return &Result{Log: log, Action: log}, nil
	}
	installed, err := p.ListInstalled(op.Env)
	if err != nil {
		return nil, err
	}
	resolved, err := pinRequested(op.Packages, installed)
	if err != nil {
		return nil, err
	}
	return &Result{Log: log, Action: PipAction(op, resolved), Resolved: resolved}, nil
}

// Replay re-applies a pip entry. Custom installs replay the recorded url;
// pinned installs replay name==version against the recorded index.
func (p *Pip) Replay(env string, e history.Entry) error {
	var run string
	switch {
	case e.Kind == history.KindRemove:
		run = e.Action + " -y"
	case len(e.Requested) > 0 && e.Requested[0].Custom != "":
		run = "pip install " + e.Requested[0].Custom
	default:
		// strip the --custom marker if present; the action is runnable as-is
		run = strings.SplitN(e.Action, " --custom ", 2)[0]
	}
	_, err := runShell(inEnv(env, run))
	return err
}

// ListInstalled reports pip-installed packages from `conda list`, which
// tags them with pip/pypi in its last column.
func (p *Pip) ListInstalled(env string) (map[string]history.ResolvedSpec, error) {
	out, err := runShell(fmt.Sprintf("conda list --name %s", env))
	if err != nil {
		return nil, fmt.Errorf("conda list failed: %w", err)
	}
	_, pip := ParseCondaList(string(out))
	return pip, nil
}

func PipCommand(op Operation) string {
	var sb strings.Builder
	if op.Kind == history.KindRemove {
		sb.WriteString("pip uninstall")
	} else {
		sb.WriteString("pip install")
	}
	custom := ""
	for _, pkg := range op.Packages {
		if pkg.Custom != "" {
			custom = pkg.Custom
			sb.WriteString(" " + pkg.Name)
			continue
		}
		sb.WriteString(" " + pkg.Spec())
	}
	for _, u := range op.IndexURLs {
		sb.WriteString(" --index-url " + u)
	}
	if custom != "" {
		sb.WriteString(" --custom " + custom)
	}
	return sb.String()
}

// pipRunCommand is the command actually executed: custom installs run the
// url directly, and the --custom marker never reaches pip.
func pipRunCommand(op Operation) string {
	if op.Kind == history.KindRemove {
		return PipCommand(op) + " -y"
	}
	for _, pkg := range op.Packages {
		if pkg.Custom != "" {
			return "pip install " + pkg.Custom
		}
	}
	return PipCommand(op)
}

func PipAction(op Operation, resolved []history.ResolvedSpec) string {
	var sb strings.Builder
	sb.WriteString("pip install")
	for _, r := range resolved {
		sb.WriteString(" " + r.Pin(history.EcoPip))
	}
	urls := op.IndexURLs
	if len(urls) == 0 {
		urls = []string{DefaultIndexURL}
	}
	for _, u := range urls {
		sb.WriteString(" --index-url " + u)
	}
	for _, pkg := range op.Packages {
		if pkg.Custom != "" {
			sb.WriteString(" --custom " + pkg.Custom)
		}
	}
	return sb.String()
}

// inEnv wraps a command so it runs inside the named environment.
func inEnv(env, command string) string {
	return fmt.Sprintf("conda run --name %s %s", env, command)
}
