package history

import (
	"fmt"
	"regexp"
	"strings"
)

// RCommandPrefix starts every R log and action. R specifiers are whole
// install commands, so R entries are parsed differently from conda/pip.
const RCommandPrefix = "R --quiet --vanilla -e "

// AssertPrefix starts user-asserted correction entries.
const AssertPrefix = "envtrack history update"

var (
	condaPinRe = regexp.MustCompile(`^([a-z0-9_.-]+)=([a-zA-Z0-9_.!+]+)(?:=([a-zA-Z0-9_.]+))?$`)
	quotedRe   = regexp.MustCompile(`\\?"([^"\\]+)\\?"`)
	removeCRe  = regexp.MustCompile(`remove\.packages\(c\((.*?)\)\)`)
)

// valueFlags take an argument; they and their value are skipped when
// collecting positional package tokens.
var valueFlags = map[string]bool{
	"--name": true, "--channel": true, "-c": true,
	"--index-url": true, "--custom": true, "--eco": true,
}

// ParseEntry reconstructs an Entry from the parallel history.yaml
// sections: the literal user command, the pinned action command and the
// entry's debug block. The command grammar is the one the package-manager
// adapters emit, so entries round-trip losslessly through the file.
func ParseEntry(log, action string, debug DebugInfo) (Entry, error) {
	e := Entry{Log: log, Action: action, Debug: debug, Timestamp: debug.Timestamp}
	switch {
	case strings.HasPrefix(log, "conda "):
		return parseCondaEntry(e)
	case strings.HasPrefix(log, "pip "):
		return parsePipEntry(e)
	case strings.HasPrefix(log, RCommandPrefix):
		return parseREntry(e)
	case strings.HasPrefix(log, AssertPrefix):
		return parseAssertEntry(e)
	}
	return e, fmt.Errorf("unrecognized history command %q", log)
}

func parseCondaEntry(e Entry) (Entry, error) {
	e.Ecosystem = EcoConda
	fields := strings.Fields(e.Log)
	if len(fields) < 2 {
		return e, fmt.Errorf("malformed conda command %q", e.Log)
	}
	switch fields[1] {
	case "create":
		e.Kind = KindCreate
	case "install":
		e.Kind = KindInstall
	case "remove":
		e.Kind = KindRemove
	case "update":
		e.Kind = KindUpdate
	default:
		return e, fmt.Errorf("unrecognized conda operation %q", fields[1])
	}
	for _, tok := range positionals(fields[2:]) {
		e.Requested = append(e.Requested, ParseSpec(tok))
	}
	e.Resolved = condaPins(e.Action)
	return e, nil
}

func condaPins(action string) []ResolvedSpec {
	var out []ResolvedSpec
	fields := strings.Fields(action)
	if len(fields) < 2 {
		return nil
	}
	for _, tok := range positionals(fields[2:]) {
		if m := condaPinRe.FindStringSubmatch(tok); m != nil {
			out = append(out, ResolvedSpec{Name: m[1], Version: m[2], Build: m[3]})
		}
	}
	return out
}

func parsePipEntry(e Entry) (Entry, error) {
	e.Ecosystem = EcoPip
	fields := strings.Fields(e.Log)
	if len(fields) < 2 {
		return e, fmt.Errorf("malformed pip command %q", e.Log)
	}
	switch fields[1] {
	case "install":
		e.Kind = KindInstall
	case "uninstall":
		e.Kind = KindRemove
	default:
		return e, fmt.Errorf("unrecognized pip operation %q", fields[1])
	}
	custom := flagValue(fields, "--custom")
	for _, tok := range positionals(fields[2:]) {
		spec := parsePipSpec(tok)
		spec.Custom = custom
		e.Requested = append(e.Requested, spec)
	}
	if actionFields := strings.Fields(e.Action); len(actionFields) > 2 {
		for _, tok := range positionals(actionFields[2:]) {
			if name, version, ok := strings.Cut(tok, "=="); ok {
				e.Resolved = append(e.Resolved, ResolvedSpec{Name: name, Version: version})
			}
		}
	}
	return e, nil
}

func parsePipSpec(tok string) PackageSpec {
	if name, version, ok := strings.Cut(tok, "=="); ok {
		return PackageSpec{Name: strings.ToLower(name), Constraint: "==" + version}
	}
	return ParseSpec(tok)
}

func parseREntry(e Entry) (Entry, error) {
	e.Ecosystem = EcoR
	inner := strings.TrimPrefix(e.Log, RCommandPrefix)
	inner = strings.Trim(inner, `"`)
	if m := removeCRe.FindStringSubmatch(inner); m != nil {
		e.Kind = KindRemove
		for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
			e.Requested = append(e.Requested, PackageSpec{Name: q[1]})
		}
		return e, nil
	}
	e.Kind = KindInstall
	for _, cmd := range strings.Split(inner, "; ") {
		name, version := rCommandPackage(cmd)
		if name == "" {
			continue
		}
		e.Requested = append(e.Requested, PackageSpec{Name: name, Custom: cmd})
		e.Resolved = append(e.Resolved, ResolvedSpec{Name: name, Version: version})
	}
	if len(e.Requested) == 0 {
		return e, fmt.Errorf("no packages found in R command %q", e.Log)
	}
	return e, nil
}

// rCommandPackage extracts the package name (first quoted argument) and
// pinned version (next quoted argument that looks like a version) from a
// single R install command.
func rCommandPackage(cmd string) (name, version string) {
	quoted := quotedRe.FindAllStringSubmatch(cmd, -1)
	if len(quoted) == 0 {
		return "", ""
	}
	name = quoted[0][1]
	version = "*"
	for _, q := range quoted[1:] {
		v := q[1]
		if !strings.Contains(v, "://") {
			version = v
			break
		}
	}
	return name, version
}

func parseAssertEntry(e Entry) (Entry, error) {
	e.UserAsserted = true
	fields := strings.Fields(e.Log)
	eco := flagValue(fields, "--eco")
	if eco == "" {
		return e, fmt.Errorf("missing --eco in %q", e.Log)
	}
	e.Ecosystem = Ecosystem(eco)
	switch {
	case hasFlag(fields, "--install"):
		e.Kind = KindInstall
	case hasFlag(fields, "--remove"):
		e.Kind = KindRemove
	default:
		return e, fmt.Errorf("history update %q has neither --install nor --remove", e.Log)
	}
	for _, tok := range assertSpecs(fields) {
		spec := ParseSpec(tok)
		e.Requested = append(e.Requested, spec)
		if e.Kind == KindInstall {
			version := "*"
			if spec.Constraint != "" {
				version = strings.TrimLeft(spec.Constraint, "=<>!")
			}
			e.Resolved = append(e.Resolved, ResolvedSpec{Name: spec.Name, Version: version})
		}
	}
	return e, nil
}

// assertSpecs returns the values following --install or --remove.
func assertSpecs(fields []string) []string {
	var out []string
	collecting := false
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case tok == "--install" || tok == "--remove":
			collecting = true
		case valueFlags[tok]:
			collecting = false
			i++
		case strings.HasPrefix(tok, "-"):
			collecting = false
		case collecting:
			out = append(out, tok)
		}
	}
	return out
}

// positionals returns tokens that are not flags or flag values.
func positionals(fields []string) []string {
	var out []string
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if valueFlags[tok] {
			i++
			continue
		}
		if strings.HasPrefix(tok, "-") {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func flagValue(fields []string, flag string) string {
	for i, tok := range fields {
		if tok == flag && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

func hasFlag(fields []string, flag string) bool {
	for _, tok := range fields {
		if tok == flag {
			return true
		}
	}
	return false
}
