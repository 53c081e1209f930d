// Package snapshot derives the declarative manifest of an environment
// from its action log: only user-requested top-level packages with their
// latest surviving pins, never transitive dependencies.
package snapshot

import "time"

// Package is one pinned top-level package in the snapshot. Custom holds a
// direct url for pip packages installed outside the default index.
type Package struct {
	Name    string
	Version string
	Custom  string
}

// RScript is one line of install.R: the pinned install command for an R
// package, with the version and date it was recorded.
type RScript struct {
	Name    string
	Version string
	Command string
	Date    time.Time
}

// Snapshot is the derived manifest. Conda and Pip are sorted by package
// name; RScripts keeps the order the surviving packages were installed in.
type Snapshot struct {
	Name     string
	Channels []string
	Conda    []Package
	Pip      []Package
	RScripts []RScript
}

// HasR reports whether the snapshot tracks any R packages.
func (s *Snapshot) HasR() bool { return len(s.RScripts) > 0 }
