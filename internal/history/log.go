package history

import (
	"time"

	"github.com/google/uuid"
)

// History is the append-only action log for one environment. Name and ID
// identify the environment (the ID survives pushes, so two machines can
// tell whether they track the same environment). Channels is ordered,
// deduplicated and append-only.
type History struct {
	Name     string
	ID       string
	Channels []string
	Entries  []Entry
}

// New creates the history for a new environment. The first appended entry
// is expected to be the create operation.
func New(name string, channels []string) *History {
	h := &History{Name: name, ID: uuid.NewString()}
	h.AppendChannels(channels)
	return h
}

// Append adds an entry to the log. It fails with *ResolutionError when a
// create/install/update entry carries no resolved specifiers and was not
// explicitly user-asserted, and with *OrderingError when the entry's
// timestamp is not strictly after the last entry's.
func (h *History) Append(e Entry) error {
	if e.Kind != KindRemove && !e.UserAsserted && len(e.Resolved) == 0 {
		names := make([]string, 0, len(e.Requested))
		for _, p := range e.Requested {
			names = append(names, p.Name)
		}
		return &ResolutionError{Command: e.Log, Packages: names}
	}
	if n := len(h.Entries); n > 0 && !e.Timestamp.After(h.Entries[n-1].Timestamp) {
		return &OrderingError{Last: h.Entries[n-1].Timestamp, Proposed: e.Timestamp}
	}
	h.Entries = append(h.Entries, e)
	return nil
}

// AppendChannels appends new channels, keeping existing order. Channels
// are never reordered or removed once set.
func (h *History) AppendChannels(channels []string) {
	seen := make(map[string]struct{}, len(h.Channels))
	for _, c := range h.Channels {
		seen[c] = struct{}{}
	}
	for _, c := range channels {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		h.Channels = append(h.Channels, c)
	}
}

// LastTimestamp returns the timestamp of the newest entry, or the zero
// time for an empty log.
func (h *History) LastTimestamp() time.Time {
	if len(h.Entries) == 0 {
		return time.Time{}
	}
	return h.Entries[len(h.Entries)-1].Timestamp
}

// NextTimestamp returns now, nudged forward when now would not land
// strictly after the newest entry. Keeps appends valid on coarse clocks
// and when replaying several entries in one call.
func (h *History) NextTimestamp(now time.Time) time.Time {
	if last := h.LastTimestamp(); !now.After(last) {
		return last.Add(time.Microsecond)
	}
	return now
}

// Latest folds the log in order and returns, per ecosystem, the surviving
// packages with their newest pins. Removed packages are absent; updated
// packages carry only the latest resolved version. An update entry with no
// requested specifiers (update --all) refreshes the pins of packages
// already tracked using the resolved set captured in the entry, and is
// never re-resolved.
func (h *History) Latest() map[Ecosystem]map[string]ResolvedSpec {
	state := make(map[Ecosystem]map[string]ResolvedSpec, len(Ecosystems))
	for _, eco := range Ecosystems {
		state[eco] = make(map[string]ResolvedSpec)
	}
	for _, e := range h.Entries {
		eco := state[e.Ecosystem]
		switch e.Kind {
		case KindRemove:
			for _, p := range e.Requested {
				delete(eco, p.Name)
			}
		case KindUpdate:
			if len(e.Requested) == 0 {
				for _, r := range e.Resolved {
					if _, tracked := eco[r.Name]; tracked {
						eco[r.Name] = r
					}
				}
				continue
			}
			upsert(eco, e)
		default: // create, install
			upsert(eco, e)
		}
	}
	return state
}

func upsert(eco map[string]ResolvedSpec, e Entry) {
	for _, p := range e.Requested {
		r := ResolvedSpec{Name: p.Name, Version: "*"}
		for _, res := range e.Resolved {
			if res.Name == p.Name {
				r = res
				break
			}
		}
		eco[p.Name] = r
	}
}

// Equal reports whether two histories record the same environment and the
// same operation sequence.
func (h *History) Equal(other *History) bool {
	if other == nil {
		return false
	}
	if h.Name != other.Name || h.ID != other.ID || len(h.Entries) != len(other.Entries) {
		return false
	}
	for i := range h.Entries {
		if !h.Entries[i].Same(other.Entries[i]) {
			return false
		}
	}
	return true
}
