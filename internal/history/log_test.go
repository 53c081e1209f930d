package history

import (
	"errors"
	"testing"
	"time"
)

var testDebug = DebugInfo{Platform: "linux", CondaVersion: "4.6.14", ToolVersion: "1.0.0"}

// entryAt builds a valid conda install entry with the given timestamp.
func entryAt(ts time.Time, name, version string) Entry {
	return Entry{
		Ecosystem: EcoConda,
		Kind:      KindInstall,
		Log:       "conda install --name demo " + name,
		Action:    "conda install --name demo " + name + "=" + version,
		Requested: []PackageSpec{{Name: name}},
		Resolved:  []ResolvedSpec{{Name: name, Version: version}},
		Timestamp: ts,
		Debug:     testDebug,
	}
}

// TestAppend_RejectsUnresolvedEntry verifies that an install entry with
// no resolved specifiers fails with ResolutionError.
func TestAppend_RejectsUnresolvedEntry(t *testing.T) {
	h := New("demo", nil)
	e := Entry{
		Ecosystem: EcoConda,
		Kind:      KindInstall,
		Log:       "conda install --name demo pandas",
		Requested: []PackageSpec{{Name: "pandas"}},
		Timestamp: time.Now(),
	}
	err := h.Append(e)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Append() error = %v; want *ResolutionError", err)
	}
	if len(resErr.Packages) != 1 || resErr.Packages[0] != "pandas" {
		t.Errorf("ResolutionError.Packages = %v; want [pandas]", resErr.Packages)
	}
	if len(h.Entries) != 0 {
		t.Errorf("rejected entry was appended; log has %d entries", len(h.Entries))
	}
}

// TestAppend_AllowsUnresolvedRemoveAndAsserted verifies removes and
// user-asserted entries do not require resolution.
func TestAppend_AllowsUnresolvedRemoveAndAsserted(t *testing.T) {
	h := New("demo", nil)
	base := time.Now()

	remove := Entry{Ecosystem: EcoConda, Kind: KindRemove,
		Log: "conda remove --name demo pandas", Action: "conda remove --name demo pandas=0.24.2",
		Requested: []PackageSpec{{Name: "pandas"}}, Timestamp: base}
	if err := h.Append(remove); err != nil {
		t.Fatalf("Append(remove) failed: %v", err)
	}

	asserted := Entry{Ecosystem: EcoPip, Kind: KindInstall, UserAsserted: true,
		Log: "envtrack history update --name demo --eco pip --install arcgis",
		Requested: []PackageSpec{{Name: "arcgis"}}, Timestamp: base.Add(time.Second)}
	if err := h.Append(asserted); err != nil {
		t.Fatalf("Append(asserted) failed: %v", err)
	}
}

// TestAppend_RejectsOutOfOrderTimestamp verifies strict timestamp
// ordering: an entry not strictly after the last one fails with
// OrderingError.
func TestAppend_RejectsOutOfOrderTimestamp(t *testing.T) {
	h := New("demo", nil)
	base := time.Now()
	if err := h.Append(entryAt(base, "pandas", "0.24.2")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	for _, ts := range []time.Time{base, base.Add(-time.Second)} {
		err := h.Append(entryAt(ts, "numpy", "1.16.0"))
		var ordErr *OrderingError
		if !errors.As(err, &ordErr) {
			t.Errorf("Append(ts=%v) error = %v; want *OrderingError", ts, err)
		}
	}
	if len(h.Entries) != 1 {
		t.Errorf("log has %d entries; want 1", len(h.Entries))
	}
}

// TestNextTimestamp verifies the nudge keeps appends strictly ordered
// even when the clock has not advanced.
func TestNextTimestamp(t *testing.T) {
	h := New("demo", nil)
	base := time.Now()
	if err := h.Append(entryAt(base, "pandas", "0.24.2")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	ts := h.NextTimestamp(base)
	if !ts.After(base) {
		t.Errorf("NextTimestamp(same instant) = %v; want strictly after %v", ts, base)
	}
	later := base.Add(time.Second)
	if got := h.NextTimestamp(later); !got.Equal(later) {
		t.Errorf("NextTimestamp(later) = %v; want %v unchanged", got, later)
	}
}

// TestAppendChannels verifies channels are deduplicated and append-only.
func TestAppendChannels(t *testing.T) {
	h := New("demo", []string{"conda-forge"})
	h.AppendChannels([]string{"bioconda", "conda-forge", "bioconda"})

	want := []string{"conda-forge", "bioconda"}
	if len(h.Channels) != len(want) {
		t.Fatalf("Channels = %v; want %v", h.Channels, want)
	}
	for i := range want {
		if h.Channels[i] != want[i] {
			t.Errorf("Channels[%d] = %q; want %q", i, h.Channels[i], want[i])
		}
	}
}

// TestLatest_FoldSemantics verifies install/remove/update folding: the
// newest pin survives, removed packages disappear, and an update with no
// specifiers refreshes only already-tracked packages.
func TestLatest_FoldSemantics(t *testing.T) {
	h := New("demo", nil)
	base := time.Now()

	if err := h.Append(entryAt(base, "pandas", "0.24.2")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := h.Append(entryAt(base.Add(time.Second), "numpy", "1.16.0")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	// update --all: refreshes pandas and numpy, but scipy stays untracked
	// even though conda resolved it.
	all := Entry{
		Ecosystem: EcoConda,
		Kind:      KindUpdate,
		Log:       "conda update --name demo --all",
		Action:    "conda update --name demo pandas=0.25.0 numpy=1.17.0 --all",
		Resolved: []ResolvedSpec{
			{Name: "pandas", Version: "0.25.0"},
			{Name: "numpy", Version: "1.17.0"},
			{Name: "scipy", Version: "1.3.0"},
		},
		Timestamp: base.Add(2 * time.Second),
	}
	if err := h.Append(all); err != nil {
		t.Fatalf("Append(update --all) failed: %v", err)
	}

	remove := Entry{Ecosystem: EcoConda, Kind: KindRemove,
		Log: "conda remove --name demo numpy", Action: "conda remove --name demo numpy=1.17.0",
		Requested: []PackageSpec{{Name: "numpy"}},
		Timestamp: base.Add(3 * time.Second)}
	if err := h.Append(remove); err != nil {
		t.Fatalf("Append(remove) failed: %v", err)
	}

	latest := h.Latest()[EcoConda]
	if got := latest["pandas"].Version; got != "0.25.0" {
		t.Errorf("pandas version = %q; want 0.25.0 after update --all", got)
	}
	if _, ok := latest["numpy"]; ok {
		t.Error("numpy still tracked after remove")
	}
	if _, ok := latest["scipy"]; ok {
		t.Error("scipy became tracked by update --all; untracked packages must stay out")
	}
}

// TestEqual compares histories by identity and operation sequence, not
// timestamps.
func TestEqual(t *testing.T) {
	a := New("demo", nil)
	base := time.Now()
	if err := a.Append(entryAt(base, "pandas", "0.24.2")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	b := &History{Name: a.Name, ID: a.ID}
	if err := b.Append(entryAt(base.Add(time.Hour), "pandas", "0.24.2")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if !a.Equal(b) {
		t.Error("histories with same operations but different timestamps should be equal")
	}

	c := &History{Name: a.Name, ID: "other-id", Entries: a.Entries}
	if a.Equal(c) {
		t.Error("histories with different ids should not be equal")
	}
}
