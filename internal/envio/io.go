// Package envio reads and writes the persisted environment files for a
// local or remote copy: history.yaml, conda-env.yaml, install.R and the
// local-only remote pointer.
package envio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/snapshot"
)

const (
	HistoryFile  = "history.yaml"
	CondaEnvFile = "conda-env.yaml"
	InstallRFile = "install.R"
	remoteFile   = "remote.txt"
)

// sharedFiles are the files copied between local and remote. remote.txt
// stays local: it holds a machine-specific path.
var sharedFiles = []string{HistoryFile, CondaEnvFile, InstallRFile}

// ErrNoRemote is returned when the remote pointer has not been configured.
var ErrNoRemote = errors.New(`remote is not configured; run "envtrack remote <dir>" inside the project`)

// EnvIO handles one environment directory, local or remote.
type EnvIO struct {
	Dir string
}

func New(dir string) EnvIO { return EnvIO{Dir: dir} }

func (io EnvIO) HistoryPath() string { return filepath.Join(io.Dir, HistoryFile) }

// ReadHistory decodes history.yaml. A missing file returns (nil, nil):
// absence is a state, not an error. Corrupt content fails with
// *history.CorruptLogError.
func (io EnvIO) ReadHistory() (*history.History, error) {
	data, err := os.ReadFile(io.HistoryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", io.HistoryPath(), err)
	}
	return history.Decode(data, io.HistoryPath())
}

// WriteAll persists the history and its derived snapshot files. install.R
// is deleted when the log no longer tracks R packages.
func (io EnvIO) WriteAll(h *history.History) error {
	if err := os.MkdirAll(io.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", io.Dir, err)
	}
	data, err := history.Encode(h)
	if err != nil {
		return err
	}
	if err := os.WriteFile(io.HistoryPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", io.HistoryPath(), err)
	}

	snap := snapshot.Build(h)
	envYAML, err := snap.CondaEnvYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(io.Dir, CondaEnvFile), envYAML, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", CondaEnvFile, err)
	}

	installR := filepath.Join(io.Dir, InstallRFile)
	if snap.HasR() {
		if err := os.WriteFile(installR, []byte(snap.InstallR()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", InstallRFile, err)
		}
	} else if err := os.Remove(installR); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", InstallRFile, err)
	}
	return nil
}

// Stat reports the history file's size and modification time. ok is false
// when the file does not exist.
func (io EnvIO) Stat() (size int64, mtime time.Time, ok bool) {
	info, err := os.Stat(io.HistoryPath())
	if err != nil {
		return 0, time.Time{}, false
	}
	return info.Size(), info.ModTime(), true
}

// CopyTo copies the shared environment files into dst, creating it if
// needed.
func (io EnvIO) CopyTo(dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	for _, name := range sharedFiles {
		data, err := os.ReadFile(filepath.Join(io.Dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dst, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Join(dst, name), err)
		}
	}
	return nil
}

// Delete removes the environment directory and everything in it.
func (io EnvIO) Delete() error {
	if err := os.RemoveAll(io.Dir); err != nil {
		return fmt.Errorf("failed to delete %s: %w", io.Dir, err)
	}
	return nil
}

// OverwriteLocal replaces the local copy's shared files with the remote's,
// keeping local-only files such as the remote pointer.
func OverwriteLocal(local, remote EnvIO) error {
	if err := remote.CopyTo(local.Dir); err != nil {
		return err
	}
	// drop local shared files the remote no longer has (e.g. install.R
	// after the last R package was removed remotely)
	for _, name := range sharedFiles {
		if _, err := os.Stat(filepath.Join(remote.Dir, name)); os.IsNotExist(err) {
			if err := os.Remove(filepath.Join(local.Dir, name)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale %s: %w", name, err)
			}
		}
	}
	return nil
}

// RemoteDir returns the configured remote directory for this local copy.
func (io EnvIO) RemoteDir() (string, error) {
	data, err := os.ReadFile(filepath.Join(io.Dir, remoteFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoRemote
		}
		return "", fmt.Errorf("failed to read remote pointer: %w", err)
	}
	dir := strings.TrimSpace(string(data))
	if dir == "" {
		return "", ErrNoRemote
	}
	return dir, nil
}

// SetRemoteDir rebinds the remote pointer.
func (io EnvIO) SetRemoteDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve remote dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(io.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", io.Dir, err)
	}
	if err := os.WriteFile(filepath.Join(io.Dir, remoteFile), []byte(abs+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write remote pointer: %w", err)
	}
	return nil
}

// HasRemote reports whether a remote pointer is configured.
func (io EnvIO) HasRemote() bool {
	_, err := io.RemoteDir()
	return err == nil
}
