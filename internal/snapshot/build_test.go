package snapshot

import (
	"testing"
	"time"

	"github.com/blackwell-systems/envtrack/internal/history"
)

var testDebug = history.DebugInfo{Platform: "linux", CondaVersion: "4.8.2"}

// historyFrom parses and appends the given log/action pairs with
// strictly increasing timestamps.
func historyFrom(t *testing.T, pairs [][2]string) *history.History {
	t.Helper()
	h := history.New("demo", []string{"conda-forge"})
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		e, err := history.ParseEntry(p[0], p[1], testDebug)
		if err != nil {
			t.Fatalf("ParseEntry(%q) failed: %v", p[0], err)
		}
		e.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := h.Append(e); err != nil {
			t.Fatalf("Append(%q) failed: %v", p[0], err)
		}
	}
	return h
}

// TestBuild_FoldSemantics replays a create, a cross-ecosystem install and
// a remove, and checks only the surviving packages appear.
func TestBuild_FoldSemantics(t *testing.T) {
	h := historyFrom(t, [][2]string{
		{
			"conda create --name demo python=3.7 pandas",
			"conda create --name demo python=3.7.3=h0371630_0 pandas=0.24.2=py37he6710b0_0",
		},
		{
			"pip install arcgis",
			"pip install arcgis==1.6.1 --index-url https://pypi.org/simple",
		},
		{
			"conda remove --name demo pandas",
			"conda remove --name demo pandas=0.24.2=py37he6710b0_0",
		},
	})
	s := Build(h)

	if len(s.Conda) != 1 || s.Conda[0].Name != "python" || s.Conda[0].Version != "3.7.3" {
		t.Errorf("Conda = %+v; want only python 3.7.3", s.Conda)
	}
	if len(s.Pip) != 1 || s.Pip[0].Name != "arcgis" || s.Pip[0].Version != "1.6.1" {
		t.Errorf("Pip = %+v; want only arcgis 1.6.1", s.Pip)
	}
	if len(s.RScripts) != 0 {
		t.Errorf("RScripts = %+v; want none", s.RScripts)
	}
}

// TestBuild_UpdateAll verifies a bare update refreshes tracked pins only
// and never adopts packages the log does not already track.
func TestBuild_UpdateAll(t *testing.T) {
	h := historyFrom(t, [][2]string{
		{
			"conda create --name demo python=3.7 pandas",
			"conda create --name demo python=3.7.3=h0371630_0 pandas=0.24.2=py37he6710b0_0",
		},
		{
			"conda update --name demo --all",
			"conda update --name demo python=3.7.4=h0371630_0 pandas=0.25.0=py37he6710b0_0 scipy=1.3.0=py37h7c811a0_0",
		},
	})
	s := Build(h)

	want := map[string]string{"pandas": "0.25.0", "python": "3.7.4"}
	if len(s.Conda) != len(want) {
		t.Fatalf("Conda = %+v; want exactly %v", s.Conda, want)
	}
	for _, p := range s.Conda {
		if want[p.Name] != p.Version {
			t.Errorf("package %s = %s; want %s", p.Name, p.Version, want[p.Name])
		}
	}
}

// TestBuild_Idempotent verifies rebuilding from the same log gives the
// same snapshot.
func TestBuild_Idempotent(t *testing.T) {
	h := historyFrom(t, [][2]string{
		{
			"conda create --name demo python=3.7",
			"conda create --name demo python=3.7.3=h0371630_0",
		},
		{
			"pip install pylint",
			"pip install pylint==2.4.4 --index-url https://pypi.org/simple",
		},
	})
	first := Build(h)
	second := Build(h)

	diffs := Compare(first, second)
	for _, d := range diffs {
		if !d.Empty() {
			t.Errorf("rebuild drifted for %s: %+v", d.Ecosystem, d)
		}
	}
}

// TestBuild_RScriptsKeepInstallOrder verifies R packages survive in
// install order, not name order.
func TestBuild_RScriptsKeepInstallOrder(t *testing.T) {
	h := historyFrom(t, [][2]string{
		{
			"conda create --name demo r-base=3.6.1",
			"conda create --name demo r-base=3.6.1=hba0c1e5_3",
		},
		{
			history.RCommandPrefix + `"remotes::install_version(\"trelliscopejs\", version = \"0.1.18\", dependencies = TRUE)"`,
			history.RCommandPrefix + `"remotes::install_version(\"trelliscopejs\", version = \"0.1.18\", dependencies = TRUE)"`,
		},
		{
			history.RCommandPrefix + `"remotes::install_version(\"praise\", version = \"1.0.0\", dependencies = TRUE)"`,
			history.RCommandPrefix + `"remotes::install_version(\"praise\", version = \"1.0.0\", dependencies = TRUE)"`,
		},
	})
	s := Build(h)

	if len(s.RScripts) != 2 {
		t.Fatalf("RScripts = %+v; want 2 entries", s.RScripts)
	}
	if s.RScripts[0].Name != "trelliscopejs" || s.RScripts[1].Name != "praise" {
		t.Errorf("R order = [%s %s]; want install order [trelliscopejs praise]",
			s.RScripts[0].Name, s.RScripts[1].Name)
	}
	if s.RScripts[1].Version != "1.0.0" {
		t.Errorf("praise version = %s; want 1.0.0", s.RScripts[1].Version)
	}
}
