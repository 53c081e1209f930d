package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
	"github.com/blackwell-systems/envtrack/internal/snapshot"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// TestRenderPackageTable lists packages per ecosystem with their source
// column.
func TestRenderPackageTable(t *testing.T) {
	snap := &snapshot.Snapshot{
		Name:  "demo",
		Conda: []snapshot.Package{{Name: "python", Version: "3.7.3"}},
		Pip: []snapshot.Package{{
			Name: "privtool", Version: "1.2.0",
			Custom: "https://example.com/simple/privtool-1.2.0.tar.gz",
		}},
		RScripts: []snapshot.RScript{{Name: "praise", Version: "1.0.0"}},
	}
	got := RenderPackageTable(snap)

	for _, want := range []string{"python", "3.7.3", "privtool", "praise", "cran", "default"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

// TestRenderPackageTable_Empty prints a placeholder for untracked or
// empty snapshots.
func TestRenderPackageTable_Empty(t *testing.T) {
	if got := RenderPackageTable(nil); got != "No tracked packages.\n" {
		t.Errorf("RenderPackageTable(nil) = %q", got)
	}
	if got := RenderPackageTable(&snapshot.Snapshot{Name: "demo"}); got != "No tracked packages.\n" {
		t.Errorf("RenderPackageTable(empty) = %q", got)
	}
}

// TestRenderDiff shows additions, removals and version changes with
// +/-/~ markers.
func TestRenderDiff(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	diffs := []snapshot.Diff{{
		Ecosystem: history.EcoConda,
		Added:     []snapshot.Package{{Name: "scipy", Version: "1.3.0"}},
		Removed:   []snapshot.Package{{Name: "pandas", Version: "0.24.2"}},
		Changed:   []snapshot.Change{{Name: "python", From: "3.7.3", To: "3.7.4"}},
	}}
	got := RenderDiff(diffs)

	for _, want := range []string{
		"conda:",
		"+ scipy 1.3.0",
		"- pandas 0.24.2",
		"~ python 3.7.3 -> 3.7.4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}

	empty := []snapshot.Diff{{Ecosystem: history.EcoConda}}
	if got := RenderDiff(empty); got != "No differences.\n" {
		t.Errorf("RenderDiff(empty) = %q", got)
	}
}

// TestRenderStatus appends the recovery hint for the stale directions.
func TestRenderStatus(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderStatus("demo", reconcile.StatusLocalBehind, "/repo/.envtrack")
	if !strings.Contains(got, "envtrack pull") || !strings.Contains(got, "/repo/.envtrack") {
		t.Errorf("RenderStatus(local behind) = %q; want pull hint and remote dir", got)
	}
	got = RenderStatus("demo", reconcile.StatusRemoteBehind, "")
	if !strings.Contains(got, "envtrack push") || strings.Contains(got, "(remote") {
		t.Errorf("RenderStatus(remote behind) = %q; want push hint, no remote suffix", got)
	}
	got = RenderStatus("demo", reconcile.StatusInSync, "")
	if !strings.HasPrefix(got, "demo: in sync") {
		t.Errorf("RenderStatus(in sync) = %q", got)
	}
}

// TestRenderHistoryTable numbers entries oldest first.
func TestRenderHistoryTable(t *testing.T) {
	h := history.New("demo", nil)
	e, err := history.ParseEntry(
		"conda create --name demo python=3.7",
		"conda create --name demo python=3.7.3=h0371630_0",
		history.DebugInfo{Platform: "linux"})
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	e.Timestamp = time.Now().Add(-2 * time.Hour)
	if err := h.Append(e); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	got := RenderHistoryTable(h)
	if !strings.Contains(got, "conda create --name demo python=3.7") {
		t.Errorf("history table missing the command:\n%s", got)
	}
	if !strings.Contains(got, "2 hours ago") {
		t.Errorf("history table missing relative time:\n%s", got)
	}

	if got := RenderHistoryTable(nil); got != "No history.\n" {
		t.Errorf("RenderHistoryTable(nil) = %q", got)
	}
}

// TestRenderEventTable lists journal events with their detail column.
func TestRenderEventTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	events := []*store.SyncEvent{
		{Env: "demo", Kind: store.EventConflict, Detail: "pandas", CreatedAt: time.Now()},
		{Env: "demo", Kind: store.EventPull, Detail: "/repo/.envtrack", CreatedAt: time.Now().Add(-time.Hour)},
	}
	got := RenderEventTable(events)
	for _, want := range []string{"conflict", "pandas", "pull", "1 hour ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("event table missing %q:\n%s", want, got)
		}
	}

	if got := RenderEventTable(nil); got != "No sync events recorded.\n" {
		t.Errorf("RenderEventTable(nil) = %q", got)
	}
}

// TestFormatRelativeTime covers the breakpoints the tables rely on.
func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-26 * time.Hour), "1 day ago"},
		{now.Add(-14 * 24 * time.Hour), "2 weeks ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.at); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q; want %q", tt.at, got, tt.want)
		}
	}
}

// TestTruncate shortens long values with an ellipsis.
func TestTruncate(t *testing.T) {
	if got := truncate("short", 24); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-package-name-indeed", 10); got != "a-very-..." {
		t.Errorf("truncate(long) = %q; want 10 chars ending in ...", got)
	}
}
