// Package output provides terminal output utilities for envtrack.
//
// This package includes:
//   - Table rendering for tracked packages, history entries and sync events
//   - Diff rendering for snapshot comparisons
//   - Progress bars for replaying actions
//   - Human-readable formatting for sizes, dates, and sync status
//
// All rendering uses ASCII characters and ANSI color codes for terminal
// output. Progress indicators are thread-safe.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
	"github.com/blackwell-systems/envtrack/internal/snapshot"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// ANSI color codes for status and diff display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderPackageTable renders the tracked packages of a snapshot, one
// section per ecosystem that has any.
func RenderPackageTable(snap *snapshot.Snapshot) string {
	if snap == nil || (len(snap.Conda) == 0 && len(snap.Pip) == 0 && !snap.HasR()) {
		return "No tracked packages.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-24s %-16s %s\n", "Ecosystem", "Package", "Version", "Source"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	writeRows := func(eco history.Ecosystem, pkgs []snapshot.Package) {
		for _, p := range pkgs {
			source := "default"
			if p.Custom != "" {
				source = truncate(p.Custom, 28)
			}
			sb.WriteString(fmt.Sprintf("%-12s %-24s %-16s %s\n",
				eco, truncate(p.Name, 24), truncate(p.Version, 16), source))
		}
	}
	writeRows(history.EcoConda, snap.Conda)
	writeRows(history.EcoPip, snap.Pip)
	for _, r := range snap.RScripts {
		sb.WriteString(fmt.Sprintf("%-12s %-24s %-16s %s\n",
			history.EcoR, truncate(r.Name, 24), truncate(r.Version, 16), "cran"))
	}
	return sb.String()
}

// RenderDiff renders ecosystem diffs in +/-/~ notation. Added packages
// are green, removed red, version changes yellow.
func RenderDiff(diffs []snapshot.Diff) string {
	var sb strings.Builder
	any := false
	for _, d := range diffs {
		if d.Empty() {
			continue
		}
		any = true
		sb.WriteString(fmt.Sprintf("%s:\n", d.Ecosystem))
		for _, p := range d.Added {
			sb.WriteString("  " + colorize(colorGreen, fmt.Sprintf("+ %s %s", p.Name, p.Version)) + "\n")
		}
		for _, p := range d.Removed {
			sb.WriteString("  " + colorize(colorRed, fmt.Sprintf("- %s %s", p.Name, p.Version)) + "\n")
		}
		for _, c := range d.Changed {
			sb.WriteString("  " + colorize(colorYellow, fmt.Sprintf("~ %s %s -> %s", c.Name, c.From, c.To)) + "\n")
		}
	}
	if !any {
		return "No differences.\n"
	}
	return sb.String()
}

// RenderStatus renders a one-line colored sync status for an environment.
func RenderStatus(env string, status reconcile.Status, remoteDir string) string {
	label := status.String()
	switch status {
	case reconcile.StatusInSync:
		label = colorize(colorGreen, label)
	case reconcile.StatusLocalBehind:
		label = colorize(colorRed, label) + "; run 'envtrack pull'"
	case reconcile.StatusRemoteBehind:
		label = colorize(colorYellow, label) + "; run 'envtrack push'"
	default:
		label = colorize(colorGray, label)
	}
	if remoteDir == "" {
		return fmt.Sprintf("%s: %s\n", env, label)
	}
	return fmt.Sprintf("%s: %s (remote %s)\n", env, label, remoteDir)
}

// RenderHistoryTable renders the action log, oldest first.
func RenderHistoryTable(h *history.History) string {
	if h == nil || len(h.Entries) == 0 {
		return "No history.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-4s %-13s %s\n", "#", "When", "Command"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")
	for i, e := range h.Entries {
		sb.WriteString(fmt.Sprintf("%-4d %-13s %s\n",
			i+1, formatRelativeTime(e.Timestamp), e.Log))
	}
	return sb.String()
}

// RenderEventTable renders sync journal events, newest first.
func RenderEventTable(events []*store.SyncEvent) string {
	if len(events) == 0 {
		return "No sync events recorded.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-13s %-10s %s\n", "When", "Event", "Detail"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")
	for _, e := range events {
		kind := e.Kind
		switch e.Kind {
		case store.EventConflict:
			kind = colorize(colorRed, kind)
		case store.EventStale:
			kind = colorize(colorYellow, kind)
		}
		sb.WriteString(fmt.Sprintf("%-13s %-10s %s\n",
			formatRelativeTime(e.CreatedAt), kind, truncate(e.Detail, 40)))
	}
	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
