package reconcile

import (
	"github.com/blackwell-systems/envtrack/internal/history"
)

// orderedSubset reports whether every entry of sub appears in super, in
// the same relative order. Entries match on their log and action
// commands, not on timestamps, since the same action replayed on another
// machine carries a different timestamp.
func orderedSubset(super, sub []history.Entry) bool {
	i := 0
	for _, e := range super {
		if i == len(sub) {
			break
		}
		if e.Same(sub[i]) {
			i++
		}
	}
	return i == len(sub)
}

// missingFrom returns the entries of super that do not appear in sub,
// preserving their order in super.
func missingFrom(super, sub []history.Entry) []history.Entry {
	var extra []history.Entry
	i := 0
	for _, e := range super {
		if i < len(sub) && e.Same(sub[i]) {
			i++
			continue
		}
		extra = append(extra, e)
	}
	return extra
}

// findConflict looks for a package whose resolved version diverges
// between the local-only and remote-only entries. Divergence in the
// requested constraint alone is not a conflict; only the resolved
// outcome matters.
func findConflict(env string, local, remote *history.History) *ConflictError {
	localExtra := missingFrom(local.Entries, remote.Entries)
	remoteExtra := missingFrom(remote.Entries, local.Entries)

	localTouched := touchedVersions(localExtra)
	remoteTouched := touchedVersions(remoteExtra)

	for _, eco := range history.Ecosystems {
		for name, lv := range localTouched[eco] {
			rv, ok := remoteTouched[eco][name]
			if !ok || lv == "" || rv == "" || lv == rv {
				continue
			}
			return &ConflictError{
				Env:           env,
				Package:       name,
				Ecosystem:     eco,
				LocalVersion:  lv,
				RemoteVersion: rv,
			}
		}
	}
	return nil
}

// needsReapply reports whether an already-applied local entry must be
// replayed again after the remote-only entries, because those touched one
// of its packages. Replaying an entry whose packages the remote never
// touched would be redundant, and for a remove it would fail outright,
// the package being absent already.
func needsReapply(e history.Entry, remoteTouched map[history.Ecosystem]map[string]string) bool {
	touched := remoteTouched[e.Ecosystem]
	for _, p := range e.Requested {
		if _, ok := touched[p.Name]; ok {
			return true
		}
	}
	return false
}

// touchedVersions maps each package touched by the given entries to the
// last resolved version those entries left it at. Removed packages map
// to the empty string.
func touchedVersions(entries []history.Entry) map[history.Ecosystem]map[string]string {
	out := make(map[history.Ecosystem]map[string]string, len(history.Ecosystems))
	for _, eco := range history.Ecosystems {
		out[eco] = make(map[string]string)
	}
	for _, e := range entries {
		if e.Kind == history.KindRemove {
			for _, spec := range e.Requested {
				out[e.Ecosystem][spec.Name] = ""
			}
			continue
		}
		for _, r := range e.Resolved {
			out[e.Ecosystem][r.Name] = r.Version
		}
	}
	return out
}
