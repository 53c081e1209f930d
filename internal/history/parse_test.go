package history

import (
	"strings"
	"testing"
)

// TestParseSpec covers bare names, constraints and case folding.
func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec       string
		name       string
		constraint string
	}{
		{"pandas", "pandas", ""},
		{"python=3.7", "python", "=3.7"},
		{"pandas>=0.24,<1.0", "pandas", ">=0.24,<1.0"},
		{"Pandas==0.24.2", "pandas", "==0.24.2"},
		{"pytest!=5.0", "pytest", "!=5.0"},
	}
	for _, tt := range tests {
		got := ParseSpec(tt.spec)
		if got.Name != tt.name || got.Constraint != tt.constraint {
			t.Errorf("ParseSpec(%q) = {%q %q}; want {%q %q}",
				tt.spec, got.Name, got.Constraint, tt.name, tt.constraint)
		}
	}
}

// TestParseSpecs_RejectsURLWithoutCustom verifies that direct urls are
// rejected when the custom check is on.
func TestParseSpecs_RejectsURLWithoutCustom(t *testing.T) {
	_, err := ParseSpecs([]string{"https://github.com/org/pkg/archive/main.zip"}, true)
	if err == nil {
		t.Fatal("ParseSpecs() accepted a url without --custom")
	}
	if !strings.Contains(err.Error(), "--custom") {
		t.Errorf("error %q does not point at --custom", err)
	}

	if _, err := ParseSpecs([]string{"https://example.com/pkg.zip"}, false); err != nil {
		t.Errorf("ParseSpecs() with check off failed: %v", err)
	}
}

// TestRSpecs verifies name/command pairing and the mismatch error.
func TestRSpecs(t *testing.T) {
	specs, err := RSpecs([]string{"jsonlite"}, []string{`install.packages("jsonlite")`})
	if err != nil {
		t.Fatalf("RSpecs() failed: %v", err)
	}
	if specs[0].Name != "jsonlite" || specs[0].Custom != `install.packages("jsonlite")` {
		t.Errorf("RSpecs() = %+v", specs[0])
	}

	if _, err := RSpecs([]string{"a", "b"}, []string{"cmd"}); err == nil {
		t.Error("RSpecs() accepted mismatched name/command counts")
	}
}

// TestParseEntry_CondaCreate verifies the conda grammar round-trips:
// requested specs from the log, pins from the action.
func TestParseEntry_CondaCreate(t *testing.T) {
	log := "conda create --name demo python=3.7 pandas --channel conda-forge"
	action := "conda create --name demo python=3.7.3=h0371630_0 pandas=0.24.2=py37he6710b0_0 --channel conda-forge"

	e, err := ParseEntry(log, action, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Ecosystem != EcoConda || e.Kind != KindCreate {
		t.Errorf("entry = %s/%s; want conda/create", e.Ecosystem, e.Kind)
	}
	if len(e.Requested) != 2 || e.Requested[0].Name != "python" || e.Requested[1].Name != "pandas" {
		t.Errorf("Requested = %+v; want python and pandas", e.Requested)
	}
	if e.Requested[0].Constraint != "=3.7" {
		t.Errorf("python constraint = %q; want =3.7", e.Requested[0].Constraint)
	}
	if got := e.ResolvedVersion("pandas"); got != "0.24.2" {
		t.Errorf("pandas resolved version = %q; want 0.24.2", got)
	}
	if e.Resolved[0].Build != "h0371630_0" {
		t.Errorf("python build = %q; want h0371630_0", e.Resolved[0].Build)
	}
}

// TestParseEntry_PipCustom verifies a custom pip install keeps its url on
// the requested spec.
func TestParseEntry_PipCustom(t *testing.T) {
	url := "https://github.com/org/mypkg/archive/main.zip"
	log := "pip install mypkg --custom " + url
	action := "pip install mypkg==1.2.0 --index-url https://pypi.org/simple --custom " + url

	e, err := ParseEntry(log, action, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Ecosystem != EcoPip || e.Kind != KindInstall {
		t.Errorf("entry = %s/%s; want pip/install", e.Ecosystem, e.Kind)
	}
	if len(e.Requested) != 1 || e.Requested[0].Custom != url {
		t.Errorf("Requested = %+v; want custom url %s", e.Requested, url)
	}
	if got := e.ResolvedVersion("mypkg"); got != "1.2.0" {
		t.Errorf("mypkg resolved version = %q; want 1.2.0", got)
	}
}

// TestParseEntry_PipUninstall verifies pip uninstall maps to a remove.
func TestParseEntry_PipUninstall(t *testing.T) {
	e, err := ParseEntry("pip uninstall arcgis", "pip uninstall arcgis", testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Kind != KindRemove || e.Requested[0].Name != "arcgis" {
		t.Errorf("entry = %s %+v; want remove of arcgis", e.Kind, e.Requested)
	}
}

// TestParseEntry_RInstall verifies R installs parse the package name and
// pinned version out of the quoted command.
func TestParseEntry_RInstall(t *testing.T) {
	log := RCommandPrefix + `"remotes::install_version(\"trelliscopejs\", version = \"0.1.18\", dependencies = TRUE)"`

	e, err := ParseEntry(log, log, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Ecosystem != EcoR || e.Kind != KindInstall {
		t.Errorf("entry = %s/%s; want r/install", e.Ecosystem, e.Kind)
	}
	if e.Requested[0].Name != "trelliscopejs" {
		t.Errorf("package = %q; want trelliscopejs", e.Requested[0].Name)
	}
	if got := e.ResolvedVersion("trelliscopejs"); got != "0.1.18" {
		t.Errorf("version = %q; want 0.1.18", got)
	}
}

// TestParseEntry_RRemove verifies remove.packages commands parse into
// remove entries.
func TestParseEntry_RRemove(t *testing.T) {
	log := RCommandPrefix + `"remove.packages(c(\"jsonlite\",\"praise\"))"`

	e, err := ParseEntry(log, log, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Kind != KindRemove {
		t.Fatalf("kind = %s; want remove", e.Kind)
	}
	if len(e.Requested) != 2 || e.Requested[0].Name != "jsonlite" || e.Requested[1].Name != "praise" {
		t.Errorf("Requested = %+v; want jsonlite and praise", e.Requested)
	}
}

// TestParseEntry_Asserted verifies history update commands become
// user-asserted entries with versions taken from the specifiers.
func TestParseEntry_Asserted(t *testing.T) {
	log := AssertPrefix + " --name demo --eco conda --install pandas=1.0.2 numpy"

	e, err := ParseEntry(log, log, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if !e.UserAsserted {
		t.Error("entry not marked user-asserted")
	}
	if e.Ecosystem != EcoConda || e.Kind != KindInstall {
		t.Errorf("entry = %s/%s; want conda/install", e.Ecosystem, e.Kind)
	}
	if got := e.ResolvedVersion("pandas"); got != "1.0.2" {
		t.Errorf("pandas version = %q; want 1.0.2", got)
	}
	if got := e.ResolvedVersion("numpy"); got != "*" {
		t.Errorf("numpy version = %q; want * for a bare name", got)
	}

	rm := AssertPrefix + " --name demo --eco pip --remove arcgis"
	e, err = ParseEntry(rm, rm, testDebug)
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if e.Kind != KindRemove || e.Ecosystem != EcoPip {
		t.Errorf("entry = %s/%s; want pip/remove", e.Ecosystem, e.Kind)
	}
}

// TestParseEntry_Unrecognized verifies unknown commands fail loudly
// rather than producing an empty entry.
func TestParseEntry_Unrecognized(t *testing.T) {
	if _, err := ParseEntry("apt install foo", "apt install foo", testDebug); err == nil {
		t.Error("ParseEntry() accepted an unknown command")
	}
}
