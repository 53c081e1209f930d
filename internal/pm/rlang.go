package pm

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// listRPackages prints user-installed R packages (base/recommended
// packages carry a Priority and are filtered out).
const listRPackages = `installed_raw <- installed.packages(); installed_df <- as.data.frame(installed_raw, stringsAsFactors=FALSE); installed <- installed_df[, c("Package", "Version", "Priority")]; user_installed <- installed[is.na(installed[["Priority"]]), c("Package", "Version"), drop=FALSE]; print(user_installed, row.names=FALSE)`

// R drives the tertiary ecosystem. The user supplies whole install
// commands (install_mran, install_version and friends) which double as
// the pinned specifiers, so resolution is mostly verification.
type R struct{}

func NewR() *R { return &R{} }

func (r *R) Ecosystem() history.Ecosystem { return history.EcoR }

func (r *R) Version() string {
	out, err := runShell("R --version")
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

func (r *R) ResolveAndApply(op Operation) (*Result, error) {
	if op.Kind == history.KindRemove {
		return r.remove(op)
	}
	commands := make([]string, 0, len(op.Packages))
	for _, p := range op.Packages {
		commands = append(commands, p.Custom)
	}
	log := RShellCommand(strings.Join(commands, "; "))
	if _, err := runShell(inEnv(op.Env, log)); err != nil {
		return nil, fmt.Errorf("R install failed: %w", err)
	}
	installed, err := r.ListInstalled(op.Env)
	if err != nil {
		return nil, err
	}
	resolved := make([]history.ResolvedSpec, 0, len(op.Packages))
	for _, p := range op.Packages {
		spec, ok := installed[strings.ToLower(p.Name)]
		if !ok {
			return nil, fmt.Errorf("R package %q was not installed by %q", p.Name, p.Custom)
		}
		spec.Name = p.Name
		resolved = append(resolved, spec)
	}
	return &Result{Log: log, Action: log, Resolved: resolved}, nil
}

func (r *R) remove(op Operation) (*Result, error) {
	names := make([]string, 0, len(op.Packages))
	for _, p := range op.Packages {
		names = append(names, fmt.Sprintf("\\\"%s\\\"", p.Name))
	}
	log := RShellCommand(fmt.Sprintf("remove.packages(c(%s))", strings.Join(names, ",")))
	if _, err := runShell(inEnv(op.Env, log)); err != nil {
		return nil, fmt.Errorf("R remove failed: %w", err)
	}
	return &Result{Log: log, Action: log}, nil
}

// Replay re-runs the recorded R command inside the environment.
func (r *R) Replay(env string, e history.Entry) error {
	_, err := runShell(inEnv(env, e.Action))
	return err
}

// ListInstalled parses the R installed-packages listing, lowercasing
// names for map consistency.
func (r *R) ListInstalled(env string) (map[string]history.ResolvedSpec, error) {
	out, err := runShell(inEnv(env, RShellCommand(listRPackages)))
	if err != nil {
		return nil, fmt.Errorf("listing R packages failed: %w", err)
	}
	return ParseRInstalled(string(out)), nil
}

// ParseRInstalled parses the `print(user_installed)` output: one
// "name version" pair per line, with prompt echo and header skipped.
func ParseRInstalled(out string) map[string]history.ResolvedSpec {
	installed := make(map[string]history.ResolvedSpec)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ">") || strings.HasPrefix(line, "Package Version") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		installed[strings.ToLower(fields[0])] = history.ResolvedSpec{Name: fields[0], Version: fields[1]}
	}
	return installed
}

// RShellCommand wraps R code so it can run from a shell command line,
// escaping inner double quotes.
func RShellCommand(code string) string {
	if !strings.Contains(code, `\"`) {
		code = strings.ReplaceAll(code, `"`, `\"`)
	}
	return history.RCommandPrefix + `"` + code + `"`
}
