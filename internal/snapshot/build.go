package snapshot

import (
	"sort"
	"time"

	"github.com/blackwell-systems/envtrack/internal/history"
)

type pkgState struct {
	version string
	custom  string
	command string
	date    time.Time
	order   int
}

// Build folds the action log into a snapshot. It is a pure function of
// the log: deterministic, idempotent and side-effect free. Install and
// update entries overwrite a package's pin, remove entries delete it, and
// an update with no requested specifiers (update --all) expands to the
// resolved versions captured in that entry without touching untracked
// packages.
func Build(h *history.History) *Snapshot {
	state := map[history.Ecosystem]map[string]*pkgState{
		history.EcoConda: {},
		history.EcoPip:   {},
		history.EcoR:     {},
	}
	order := 0
	for _, e := range h.Entries {
		eco := state[e.Ecosystem]
		switch e.Kind {
		case history.KindRemove:
			for _, p := range e.Requested {
				delete(eco, p.Name)
			}
		case history.KindUpdate:
			if len(e.Requested) == 0 {
				for _, r := range e.Resolved {
					if st, tracked := eco[r.Name]; tracked {
						st.version = r.Version
					}
				}
				continue
			}
			order = upsert(eco, e, order)
		default:
			order = upsert(eco, e, order)
		}
	}

	s := &Snapshot{Name: h.Name, Channels: h.Channels}
	s.Conda = sortedPackages(state[history.EcoConda])
	s.Pip = sortedPackages(state[history.EcoPip])
	s.RScripts = orderedScripts(state[history.EcoR])
	return s
}

func upsert(eco map[string]*pkgState, e history.Entry, order int) int {
	for _, p := range e.Requested {
		version := "*"
		if v := e.ResolvedVersion(p.Name); v != "" {
			version = v
		}
		custom := ""
		command := ""
		if e.Ecosystem == history.EcoPip {
			custom = p.Custom
		}
		if e.Ecosystem == history.EcoR {
			command = p.Custom
		}
		order++
		eco[p.Name] = &pkgState{
			version: version,
			custom:  custom,
			command: command,
			date:    e.Timestamp,
			order:   order,
		}
	}
	return order
}

func sortedPackages(eco map[string]*pkgState) []Package {
	names := make([]string, 0, len(eco))
	for name := range eco {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Package, 0, len(names))
	for _, name := range names {
		st := eco[name]
		out = append(out, Package{Name: name, Version: st.version, Custom: st.custom})
	}
	return out
}

func orderedScripts(eco map[string]*pkgState) []RScript {
	names := make([]string, 0, len(eco))
	for name := range eco {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return eco[names[i]].order < eco[names[j]].order
	})
	out := make([]RScript, 0, len(names))
	for _, name := range names {
		st := eco[name]
		out = append(out, RScript{
			Name:    name,
			Version: st.version,
			Command: st.command,
			Date:    st.date,
		})
	}
	return out
}
