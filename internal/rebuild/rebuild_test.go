package rebuild

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

type fakeManager struct {
	eco      history.Ecosystem
	replayed []string
	failOn   string
	exists   bool
	deleted  int
}

func (f *fakeManager) Ecosystem() history.Ecosystem { return f.eco }

func (f *fakeManager) ResolveAndApply(op pm.Operation) (*pm.Result, error) {
	return nil, errors.New("fakeManager does not apply operations")
}

func (f *fakeManager) Replay(env string, e history.Entry) error {
	if f.failOn != "" && e.Action == f.failOn {
		return errors.New("simulated replay failure")
	}
	f.replayed = append(f.replayed, e.Action)
	return nil
}

func (f *fakeManager) ListInstalled(env string) (map[string]history.ResolvedSpec, error) {
	return nil, nil
}

func (f *fakeManager) Version() string { return "0.0-test" }

func (f *fakeManager) EnvExists(name string) (bool, error) { return f.exists, nil }

func (f *fakeManager) DeleteEnv(name string) error {
	f.deleted++
	return nil
}

func histWith(t *testing.T, pairs [][2]string) *history.History {
	t.Helper()
	h := history.New("demo", nil)
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		e, err := history.ParseEntry(p[0], p[1], history.DebugInfo{Platform: "linux"})
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

var fullLog = [][2]string{
	{
		"conda create --name demo python=3.7",
		"conda create --name demo python=3.7.3=h0371630_0",
	},
	{
		"pip install arcgis",
		"pip install arcgis==1.6.1 --index-url https://pypi.org/simple",
	},
	{
		"conda install --name demo pandas",
		"conda install --name demo pandas=0.24.2=py37he6710b0_0",
	},
}

// TestRebuild deletes the existing environment and replays every action
// in log order through the right adapter.
func TestRebuild(t *testing.T) {
	conda := &fakeManager{eco: history.EcoConda, exists: true}
	pip := &fakeManager{eco: history.EcoPip}
	managers := pm.Set{history.EcoConda: conda, history.EcoPip: pip}

	if err := Rebuild(managers, histWith(t, fullLog), nil); err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if conda.deleted != 1 {
		t.Errorf("environment deleted %d times; want 1", conda.deleted)
	}
	if len(conda.replayed) != 2 || !strings.HasPrefix(conda.replayed[0], "conda create") {
		t.Errorf("conda replayed = %v; want create then pandas install", conda.replayed)
	}
	if len(pip.replayed) != 1 {
		t.Errorf("pip replayed = %v; want the arcgis install", pip.replayed)
	}
}

// TestRebuild_ReportsProgress calls the callback once per applied action
// with a running count, and not after a failure.
func TestRebuild_ReportsProgress(t *testing.T) {
	conda := &fakeManager{eco: history.EcoConda, exists: true}
	pip := &fakeManager{eco: history.EcoPip}
	managers := pm.Set{history.EcoConda: conda, history.EcoPip: pip}

	var done []int
	err := Rebuild(managers, histWith(t, fullLog), func(d, total int) {
		if total != 3 {
			t.Errorf("progress total = %d; want 3", total)
		}
		done = append(done, d)
	})
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if len(done) != 3 || done[0] != 1 || done[2] != 3 {
		t.Errorf("progress calls = %v; want 1, 2, 3", done)
	}

	pip.failOn = "pip install arcgis==1.6.1 --index-url https://pypi.org/simple"
	done = nil
	if err := Rebuild(managers, histWith(t, fullLog), func(d, total int) {
		done = append(done, d)
	}); err == nil {
		t.Fatal("Rebuild() succeeded; want replay failure")
	}
	if len(done) != 1 {
		t.Errorf("progress calls after failure = %v; want only the create", done)
	}
}

// TestRebuild_MissingEnvironmentSkipsDelete does not try to delete an
// environment that is not materialized.
func TestRebuild_MissingEnvironmentSkipsDelete(t *testing.T) {
	conda := &fakeManager{eco: history.EcoConda}
	managers := pm.Set{history.EcoConda: conda, history.EcoPip: &fakeManager{eco: history.EcoPip}}

	if err := Rebuild(managers, histWith(t, fullLog), nil); err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if conda.deleted != 0 {
		t.Errorf("environment deleted %d times; want 0", conda.deleted)
	}
}

// TestRebuild_RequiresCreateFirst rejects a log that does not start with
// the create action.
func TestRebuild_RequiresCreateFirst(t *testing.T) {
	managers := pm.Set{history.EcoConda: &fakeManager{eco: history.EcoConda}}
	h := histWith(t, [][2]string{{
		"conda install --name demo pandas",
		"conda install --name demo pandas=0.24.2=py37he6710b0_0",
	}})

	if err := Rebuild(managers, h, nil); err == nil || !strings.Contains(err.Error(), "create") {
		t.Errorf("Rebuild() error = %v; want create-first requirement", err)
	}
}

// TestRebuild_EmptyLog rejects a history without actions.
func TestRebuild_EmptyLog(t *testing.T) {
	managers := pm.Set{history.EcoConda: &fakeManager{eco: history.EcoConda}}
	if err := Rebuild(managers, history.New("demo", nil), nil); err == nil {
		t.Error("Rebuild() succeeded on an empty log")
	}
}

// TestRebuild_PartialFailure names the failing action and how far the
// replay got.
func TestRebuild_PartialFailure(t *testing.T) {
	conda := &fakeManager{eco: history.EcoConda, exists: true}
	pip := &fakeManager{eco: history.EcoPip, failOn: "pip install arcgis==1.6.1 --index-url https://pypi.org/simple"}
	managers := pm.Set{history.EcoConda: conda, history.EcoPip: pip}

	err := Rebuild(managers, histWith(t, fullLog), nil)
	var rebuildErr *Error
	if !errors.As(err, &rebuildErr) {
		t.Fatalf("Rebuild() error = %v; want *Error", err)
	}
	if rebuildErr.Index != 1 || rebuildErr.Total != 3 {
		t.Errorf("failure at %d of %d; want 1 of 3", rebuildErr.Index, rebuildErr.Total)
	}
	if !strings.Contains(err.Error(), "action 2 of 3") {
		t.Errorf("error = %v; want human-readable position", err)
	}
	if len(conda.replayed) != 1 {
		t.Errorf("conda replayed = %v; replay must stop at the failure", conda.replayed)
	}
}
