package reconcile

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/blackwell-systems/envtrack/internal/history"
)

// ConflictError reports divergent resolved versions for the same package
// between local and remote history past their common ancestor. There is
// no automatic resolution: the user must reconcile via history update.
type ConflictError struct {
	Env           string
	Package       string
	Ecosystem     history.Ecosystem
	LocalVersion  string
	RemoteVersion string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"conflicting resolved versions for %s (%s): local has %s, remote has %s%s; pick one with 'envtrack history update --name %s --eco %s --install %s=<version>' and sync again",
		e.Package, e.Ecosystem, e.LocalVersion, e.RemoteVersion, e.newerHint(),
		e.Env, e.Ecosystem, e.Package)
}

// newerHint orders the two versions when both parse as semver, so the
// report tells the user which side is ahead.
func (e *ConflictError) newerHint() string {
	lv, lerr := semver.NewVersion(e.LocalVersion)
	rv, rerr := semver.NewVersion(e.RemoteVersion)
	if lerr != nil || rerr != nil {
		return ""
	}
	switch {
	case lv.GreaterThan(rv):
		return " (local is newer)"
	case rv.GreaterThan(lv):
		return " (remote is newer)"
	}
	return ""
}

// RemoteUnavailableError indicates the remote location is missing or
// unwritable. Local state is left unchanged.
type RemoteUnavailableError struct {
	Dir string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("remote is not configured: %v; run 'envtrack remote <dir>'", e.Err)
	}
	return fmt.Sprintf("remote %s is unavailable: %v", e.Dir, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// PushRejectedError indicates the remote contains history the local copy
// does not have yet.
type PushRejectedError struct {
	RemoteDir string
	LocalDir  string
}

func (e *PushRejectedError) Error() string {
	return fmt.Sprintf(`to %s
 ! [rejected]        %s -> %s
hint: Updates were rejected because the remote contains work that you do
hint: not have locally. You may want to first integrate the remote changes
hint: (e.g., 'envtrack pull') before pushing again.`,
		e.RemoteDir, e.LocalDir, e.RemoteDir)
}
