// Package rebuild recreates a materialized environment from its action
// log alone: delete, then replay every pinned action in order.
package rebuild

import (
	"fmt"

	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
)

// Error reports a replay failure partway through a rebuild. Actions
// before Index have been applied; the environment is left in that
// partial state for inspection.
type Error struct {
	Env   string
	Index int
	Total int
	Entry history.Entry
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rebuild of %s failed at action %d of %d (%s): %v; the first %d actions were applied and the environment is left partially built",
		e.Env, e.Index+1, e.Total, e.Entry.Action, e.Err, e.Index)
}

func (e *Error) Unwrap() error { return e.Err }

// Rebuild deletes the materialized environment if present and replays
// the full log. The first entry must be the create action. progress, if
// non-nil, is called after each applied action with the count so far.
func Rebuild(managers pm.Set, h *history.History, progress func(done, total int)) error {
	if len(h.Entries) == 0 {
		return fmt.Errorf("history for %s has no actions to replay", h.Name)
	}
	if h.Entries[0].Kind != history.KindCreate {
		return fmt.Errorf("history for %s does not start with a create action; cannot rebuild", h.Name)
	}
	lc, ok := managers[history.EcoConda].(pm.EnvLifecycle)
	if !ok {
		return fmt.Errorf("no conda package manager configured")
	}
	exists, err := lc.EnvExists(h.Name)
	if err != nil {
		return err
	}
	if exists {
		if err := lc.DeleteEnv(h.Name); err != nil {
			return err
		}
	}
	for i, entry := range h.Entries {
		mgr, ok := managers[entry.Ecosystem]
		if !ok {
			return &Error{Env: h.Name, Index: i, Total: len(h.Entries), Entry: entry,
				Err: fmt.Errorf("no %s package manager configured", entry.Ecosystem)}
		}
		if err := mgr.Replay(h.Name, entry); err != nil {
			return &Error{Env: h.Name, Index: i, Total: len(h.Entries), Entry: entry, Err: err}
		}
		if progress != nil {
			progress(i+1, len(h.Entries))
		}
	}
	return nil
}
