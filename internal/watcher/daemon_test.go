package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestIsDaemonRunning_NoPIDFile reports not running without an error.
func TestIsDaemonRunning_NoPIDFile(t *testing.T) {
	running, err := IsDaemonRunning(filepath.Join(t.TempDir(), "watch.pid"))
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true without a PID file")
	}
}

// TestIsDaemonRunning_StalePID removes a PID file whose process is gone.
func TestIsDaemonRunning_StalePID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	// PIDs wrap well below this on Linux, so the process cannot exist.
	if err := os.WriteFile(pidFile, []byte("99999999\n"), 0644); err != nil {
		t.Fatal(err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true for a dead PID")
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Errorf("stale PID file was not removed: %v", err)
	}
}

// TestIsDaemonRunning_LivePID detects the test process itself as running.
func TestIsDaemonRunning_LivePID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		t.Fatal(err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Fatalf("IsDaemonRunning() failed: %v", err)
	}
	if !running {
		t.Error("IsDaemonRunning() = false for a live PID")
	}
}

// TestReadPIDFile_Malformed rejects non-numeric content.
func TestReadPIDFile_Malformed(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readPIDFile(pidFile); err == nil {
		t.Error("readPIDFile() accepted malformed content")
	}
}

// TestStopDaemon_NotRunning surfaces the missing PID file.
func TestStopDaemon_NotRunning(t *testing.T) {
	if err := StopDaemon(filepath.Join(t.TempDir(), "watch.pid")); err == nil {
		t.Error("StopDaemon() succeeded without a PID file")
	}
}
