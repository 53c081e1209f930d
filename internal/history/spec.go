package history

import (
	"fmt"
	"regexp"
	"strings"
)

var constraintRe = regexp.MustCompile(`[!<=>]+`)

// ParseSpec splits a user-typed specifier into name and constraint.
// Package names are lowercased so the internal maps stay consistent with
// what the package managers report.
func ParseSpec(spec string) PackageSpec {
	spec = strings.TrimSpace(spec)
	loc := constraintRe.FindStringIndex(spec)
	if loc == nil {
		return PackageSpec{Name: strings.ToLower(spec)}
	}
	return PackageSpec{
		Name:       strings.ToLower(spec[:loc[0]]),
		Constraint: spec[loc[0]:],
	}
}

// ParseSpecs parses a list of user-typed specifiers. When checkCustom is
// set, a specifier containing a slash is rejected: direct urls must go
// through the --custom flag so the package name is known.
func ParseSpecs(specs []string, checkCustom bool) ([]PackageSpec, error) {
	out := make([]PackageSpec, 0, len(specs))
	for _, spec := range specs {
		if checkCustom && strings.Contains(spec, "/") {
			return nil, fmt.Errorf(
				"illegal character in package spec %q; direct urls need the package name, e.g. 'envtrack pip install <name> --custom <url>'", spec)
		}
		out = append(out, ParseSpec(spec))
	}
	return out, nil
}

// RSpecs pairs R package names with the install commands that build them.
// The command is the specifier: it pins the version (install_mran,
// install_version and friends embed it) and is replayed verbatim.
func RSpecs(names, commands []string) ([]PackageSpec, error) {
	if len(names) != len(commands) {
		return nil, fmt.Errorf(
			"must have the same number of package names (%d) and install commands (%d)",
			len(names), len(commands))
	}
	out := make([]PackageSpec, 0, len(names))
	for i, name := range names {
		out = append(out, PackageSpec{Name: name, Custom: commands[i]})
	}
	return out, nil
}
