package snapshot

import (
	"strings"
	"testing"
	"time"
)

// TestCondaEnvYAML verifies the manifest layout: channels with nodefaults
// appended, pinned conda dependencies and the nested pip block.
func TestCondaEnvYAML(t *testing.T) {
	s := &Snapshot{
		Name:     "demo",
		Channels: []string{"conda-forge"},
		Conda: []Package{
			{Name: "pandas", Version: "0.24.2"},
			{Name: "python", Version: "3.7.3"},
		},
		Pip: []Package{
			{Name: "arcgis", Version: "1.6.1"},
		},
	}
	data, err := s.CondaEnvYAML()
	if err != nil {
		t.Fatalf("CondaEnvYAML() failed: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"name: demo",
		"- conda-forge",
		"- nodefaults",
		"- pandas=0.24.2",
		"- python=3.7.3",
		"- pip:",
		"- arcgis==1.6.1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("conda-env.yaml missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "- conda-forge") > strings.Index(text, "- nodefaults") {
		t.Errorf("nodefaults listed before the declared channels:\n%s", text)
	}
}

// TestCondaEnvYAML_NoDuplicateNoDefaults verifies an explicit nodefaults
// channel is not appended twice.
func TestCondaEnvYAML_NoDuplicateNoDefaults(t *testing.T) {
	s := &Snapshot{Name: "demo", Channels: []string{"conda-forge", "nodefaults"}}
	data, err := s.CondaEnvYAML()
	if err != nil {
		t.Fatalf("CondaEnvYAML() failed: %v", err)
	}
	if n := strings.Count(string(data), "nodefaults"); n != 1 {
		t.Errorf("nodefaults appears %d times; want 1:\n%s", n, data)
	}
}

// TestCondaEnvYAML_CustomPipPackage verifies a pip package installed from
// a custom URL keeps that URL in the manifest instead of a name pin.
func TestCondaEnvYAML_CustomPipPackage(t *testing.T) {
	url := "https://example.com/simple/privtool-1.2.0.tar.gz"
	s := &Snapshot{
		Name: "demo",
		Pip:  []Package{{Name: "privtool", Version: "1.2.0", Custom: url}},
	}
	data, err := s.CondaEnvYAML()
	if err != nil {
		t.Fatalf("CondaEnvYAML() failed: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, url) {
		t.Errorf("manifest missing custom URL:\n%s", text)
	}
	if strings.Contains(text, "privtool==1.2.0") {
		t.Errorf("custom package rendered as a plain pin:\n%s", text)
	}
}

// TestInstallR verifies one command per package, in order, annotated with
// version and install date.
func TestInstallR(t *testing.T) {
	s := &Snapshot{
		Name: "demo",
		RScripts: []RScript{
			{
				Name:    "trelliscopejs",
				Version: "0.1.18",
				Command: `remotes::install_version("trelliscopejs", version = "0.1.18", dependencies = TRUE)`,
				Date:    time.Date(2024, 5, 10, 9, 1, 0, 0, time.UTC),
			},
			{
				Name:    "praise",
				Version: "1.0.0",
				Command: `remotes::install_version("praise", version = "1.0.0", dependencies = TRUE)`,
				Date:    time.Date(2024, 5, 11, 9, 1, 0, 0, time.UTC),
			},
		},
	}
	got := s.InstallR()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("InstallR() = %d lines; want 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "trelliscopejs 0.1.18 (2024-05-10)") {
		t.Errorf("first line = %q; want trelliscopejs annotation", lines[0])
	}
	if !strings.HasPrefix(lines[1], `remotes::install_version("praise"`) {
		t.Errorf("second line = %q; want praise install command", lines[1])
	}
}

// TestInstallR_Empty verifies no R packages yields no file content.
func TestInstallR_Empty(t *testing.T) {
	s := &Snapshot{Name: "demo"}
	if got := s.InstallR(); got != "" {
		t.Errorf("InstallR() = %q; want empty", got)
	}
}
