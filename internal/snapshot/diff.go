package snapshot

import (
	"sort"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// Change is one package whose pinned version differs between two
// snapshots.
type Change struct {
	Name string
	From string
	To   string
}

// Diff lists, for one ecosystem, the packages present only in the newer
// snapshot, only in the older one, and those pinned differently.
type Diff struct {
	Ecosystem history.Ecosystem
	Added     []Package
	Removed   []Package
	Changed   []Change
}

// Empty reports whether the two snapshots agree for this ecosystem.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs two snapshots per ecosystem, before against after. A nil
// snapshot is treated as empty.
func Compare(before, after *Snapshot) []Diff {
	return []Diff{
		diffPackages(history.EcoConda, condaOf(before), condaOf(after)),
		diffPackages(history.EcoPip, pipOf(before), pipOf(after)),
		diffPackages(history.EcoR, rOf(before), rOf(after)),
	}
}

func condaOf(s *Snapshot) []Package {
	if s == nil {
		return nil
	}
	return s.Conda
}

func pipOf(s *Snapshot) []Package {
	if s == nil {
		return nil
	}
	return s.Pip
}

func rOf(s *Snapshot) []Package {
	if s == nil {
		return nil
	}
	pkgs := make([]Package, 0, len(s.RScripts))
	for _, r := range s.RScripts {
		pkgs = append(pkgs, Package{Name: r.Name, Version: r.Version})
	}
	return pkgs
}

func diffPackages(eco history.Ecosystem, before, after []Package) Diff {
	d := Diff{Ecosystem: eco}
	beforeByName := make(map[string]Package, len(before))
	for _, p := range before {
		beforeByName[p.Name] = p
	}
	afterByName := make(map[string]Package, len(after))
	for _, p := range after {
		afterByName[p.Name] = p
	}
	for _, p := range after {
		prev, ok := beforeByName[p.Name]
		if !ok {
			d.Added = append(d.Added, p)
			continue
		}
		if prev.Version != p.Version || prev.Custom != p.Custom {
			d.Changed = append(d.Changed, Change{Name: p.Name, From: prev.Version, To: p.Version})
		}
	}
	for _, p := range before {
		if _, ok := afterByName[p.Name]; !ok {
			d.Removed = append(d.Removed, p)
		}
	}
	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Name < d.Changed[j].Name })
	return d
}
