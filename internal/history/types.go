// Package history models the append-only action log of an envtrack
// environment: every create, install, remove and update the user issued,
// with both the literal command and the fully pinned command needed to
// reproduce it byte-for-byte on another machine.
package history

import (
	"fmt"
	"time"
)

// Ecosystem identifies which package manager an entry belongs to.
type Ecosystem string

const (
	EcoConda Ecosystem = "conda"
	EcoPip   Ecosystem = "pip"
	EcoR     Ecosystem = "r"
)

// Ecosystems lists the tracked ecosystems in canonical serialization order.
var Ecosystems = []Ecosystem{EcoConda, EcoPip, EcoR}

// Kind is the semantic operation an entry records.
type Kind string

const (
	KindCreate  Kind = "create"
	KindInstall Kind = "install"
	KindRemove  Kind = "remove"
	KindUpdate  Kind = "update"
)

// PackageSpec is a package requirement as literally typed by the user.
// Constraint is empty when only a name was given. Custom holds a direct
// url (pip) or install command (R) when the package does not come from
// the ecosystem's default index.
type PackageSpec struct {
	Name       string
	Constraint string
	Custom     string
}

// Spec renders the specifier the way the user typed it.
func (p PackageSpec) Spec() string {
	if p.Custom != "" {
		return p.Custom
	}
	if p.Constraint == "" {
		return p.Name
	}
	return p.Name + p.Constraint
}

// ResolvedSpec is the exact pinned identity of a package as determined by
// the package manager at apply time.
type ResolvedSpec struct {
	Name    string
	Version string
	Build   string
	Channel string
}

// Pin renders the pinned spec in the ecosystem's separator convention.
func (r ResolvedSpec) Pin(eco Ecosystem) string {
	sep := "="
	if eco == EcoPip {
		sep = "=="
	}
	if r.Build != "" && eco == EcoConda {
		return fmt.Sprintf("%s=%s=%s", r.Name, r.Version, r.Build)
	}
	return r.Name + sep + r.Version
}

// DebugInfo captures the context an entry was created under.
type DebugInfo struct {
	Platform     string
	CondaVersion string
	PipVersion   string
	ToolVersion  string
	Timestamp    time.Time
}

// Entry is the atomic unit of history. Entries are immutable once
// appended; corrections are modeled as new user-asserted entries.
type Entry struct {
	Ecosystem Ecosystem
	Kind      Kind
	// Log is the command as the user issued it.
	Log string
	// Action is the fully pinned command that reproduces the operation.
	Action string
	Requested []PackageSpec
	Resolved  []ResolvedSpec
	// UserAsserted marks a history correction that was not confirmed by a
	// package manager (envtrack history update).
	UserAsserted bool
	Timestamp    time.Time
	Debug        DebugInfo
}

// ResolvedVersion returns the pinned version recorded for name, or "".
func (e Entry) ResolvedVersion(name string) string {
	for _, r := range e.Resolved {
		if r.Name == name {
			return r.Version
		}
	}
	return ""
}

// Same reports whether two entries record the same operation. Entries are
// compared by their literal and pinned commands, which together identify
// an operation across machines.
func (e Entry) Same(other Entry) bool {
	return e.Log == other.Log && e.Action == other.Action
}
