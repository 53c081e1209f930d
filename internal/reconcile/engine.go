package reconcile

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/history"
	"github.com/blackwell-systems/envtrack/internal/pm"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// Engine reconciles local environments with their remote counterparts.
// Decisions that would discard or reshape history go through Decide; the
// engine itself never prompts.
type Engine struct {
	Managers pm.Set
	Store    *store.Store
	Decide   Decision
	// Debug is stamped onto entries the engine synthesizes, such as
	// local-only actions replayed during a merge.
	Debug history.DebugInfo
}

// Pull integrates remote history into the local environment. Remote-only
// actions are replayed in order against the materialized environment,
// then the local files are updated. Divergent resolved versions abort
// with a ConflictError and change nothing locally.
func (e *Engine) Pull(env *Environment) error {
	remoteIO, err := e.remoteIO(env)
	if err != nil {
		return err
	}
	remoteHist, err := remoteIO.ReadHistory()
	if err != nil {
		return err
	}
	if remoteHist == nil {
		return nil
	}
	local := env.History
	if local == nil {
		return e.adoptRemote(env, remoteIO, remoteHist, false)
	}
	if local.ID != remoteHist.ID {
		q := fmt.Sprintf("The remote history in %s belongs to a different environment than %s. Replace the local environment with the remote one?", remoteIO.Dir, env.Name)
		if !e.Decide(q) {
			return fmt.Errorf("pull aborted: remote %s holds a different environment", remoteIO.Dir)
		}
		return e.adoptRemote(env, remoteIO, remoteHist, true)
	}

	if orderedSubset(local.Entries, remoteHist.Entries) {
		// Remote has nothing local lacks.
		e.observe(env.Name, remoteIO)
		return nil
	}
	if orderedSubset(remoteHist.Entries, local.Entries) {
		return e.fastForward(env, remoteIO, remoteHist)
	}

	if c := findConflict(env.Name, local, remoteHist); c != nil {
		e.event(env.Name, store.EventConflict, c.Package)
		return c
	}
	q := fmt.Sprintf("Local and remote histories for %s have diverged without version conflicts. Merge by replaying local-only actions on top of the remote history?", env.Name)
	if !e.Decide(q) {
		return fmt.Errorf("pull aborted: histories for %s have diverged", env.Name)
	}
	return e.merge(env, remoteIO, remoteHist)
}

// Push copies the local environment files to the remote directory. The
// push is rejected when the remote holds actions the local history does
// not include.
func (e *Engine) Push(env *Environment) error {
	local, err := env.MustHistory()
	if err != nil {
		return err
	}
	remoteIO, err := e.remoteIO(env)
	if err != nil {
		return err
	}
	remoteHist, err := remoteIO.ReadHistory()
	if err != nil {
		return err
	}
	if remoteHist != nil {
		if remoteHist.Equal(local) {
			e.observe(env.Name, remoteIO)
			return nil
		}
		if !orderedSubset(local.Entries, remoteHist.Entries) {
			return &PushRejectedError{RemoteDir: remoteIO.Dir, LocalDir: env.IO.Dir}
		}
	}
	if err := env.IO.CopyTo(remoteIO.Dir); err != nil {
		return &RemoteUnavailableError{Dir: remoteIO.Dir, Err: err}
	}
	e.observe(env.Name, remoteIO)
	e.event(env.Name, store.EventPush, remoteIO.Dir)
	return nil
}

// Sync pulls then pushes, converging both sides on the merged history.
func (e *Engine) Sync(env *Environment) error {
	if err := e.Pull(env); err != nil {
		return err
	}
	return e.Push(env)
}

// Status classifies the local history against the remote without reading
// either file, using sizes and the cached remote observation.
func (e *Engine) Status(env *Environment) (Status, error) {
	dir, err := env.IO.RemoteDir()
	if err != nil {
		return StatusUnknown, &RemoteUnavailableError{Err: err}
	}
	cmp := &StatComparator{Store: e.Store}
	status, err := cmp.Compare(env.Name, env.IO, envio.New(dir))
	if err != nil {
		return status, err
	}
	if status == StatusLocalBehind {
		e.event(env.Name, store.EventStale, dir)
	}
	return status, nil
}

// Infer bootstraps tracking for an environment that already exists, from
// the packages the user names. Versions come from what is actually
// installed; nothing is run against the environment.
func (e *Engine) Infer(root, name string, specs []history.PackageSpec, channels []string) (*Environment, error) {
	condaMgr, ok := e.Managers[history.EcoConda]
	if !ok {
		return nil, fmt.Errorf("no conda package manager configured")
	}
	if lc, ok := condaMgr.(pm.EnvLifecycle); ok {
		exists, err := lc.EnvExists(name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("conda environment %s does not exist; create it before inferring", name)
		}
	}
	condaInstalled, err := condaMgr.ListInstalled(name)
	if err != nil {
		return nil, err
	}
	pipInstalled := map[string]history.ResolvedSpec{}
	if pipMgr, ok := e.Managers[history.EcoPip]; ok {
		if installed, err := pipMgr.ListInstalled(name); err == nil {
			pipInstalled = installed
		}
	}

	var condaSpecs, pipSpecs []history.PackageSpec
	var condaResolved, pipResolved []history.ResolvedSpec
	for _, spec := range specs {
		if r, ok := condaInstalled[spec.Name]; ok {
			condaSpecs = append(condaSpecs, spec)
			condaResolved = append(condaResolved, r)
			continue
		}
		if r, ok := pipInstalled[spec.Name]; ok {
			pipSpecs = append(pipSpecs, spec)
			pipResolved = append(pipResolved, r)
			continue
		}
		return nil, fmt.Errorf("environment %s does not have %s installed", name, spec.Name)
	}

	h := history.New(name, channels)
	createOp := pm.Operation{Env: name, Kind: history.KindCreate, Packages: condaSpecs, Channels: channels}
	err = h.Append(history.Entry{
		Ecosystem: history.EcoConda,
		Kind:      history.KindCreate,
		Log:       pm.CondaCommand(createOp),
		Action:    pm.CondaAction(createOp, condaResolved),
		Requested: condaSpecs,
		Resolved:  condaResolved,
		Timestamp: h.NextTimestamp(time.Now()),
		Debug:     e.Debug,
	})
	if err != nil {
		return nil, err
	}
	if len(pipSpecs) > 0 {
		pipOp := pm.Operation{Env: name, Kind: history.KindInstall, Packages: pipSpecs}
		err = h.Append(history.Entry{
			Ecosystem: history.EcoPip,
			Kind:      history.KindInstall,
			Log:       pm.PipCommand(pipOp),
			Action:    pm.PipAction(pipOp, pipResolved),
			Requested: pipSpecs,
			Resolved:  pipResolved,
			Timestamp: h.NextTimestamp(time.Now()),
			Debug:     e.Debug,
		})
		if err != nil {
			return nil, err
		}
	}

	env := &Environment{Name: name, IO: envio.New(envio.EnvDir(root, name)), History: h}
	if err := env.IO.WriteAll(h); err != nil {
		return nil, err
	}
	return env, nil
}

// adoptRemote replays the full remote history and takes the remote files
// as the new local state. With rebuild set the materialized environment
// is deleted first, so replay starts from the create entry.
func (e *Engine) adoptRemote(env *Environment, remoteIO envio.EnvIO, remoteHist *history.History, rebuild bool) error {
	if rebuild {
		lc, ok := e.Managers[history.EcoConda].(pm.EnvLifecycle)
		if !ok {
			return fmt.Errorf("no conda package manager configured")
		}
		if err := lc.DeleteEnv(env.Name); err != nil {
			return err
		}
	}
	if err := e.replay(env.Name, remoteHist.Entries); err != nil {
		return err
	}
	return e.finishPull(env, remoteIO, remoteHist)
}

// fastForward applies the remote-only tail when local history is a
// strict prefix of the remote history.
func (e *Engine) fastForward(env *Environment, remoteIO envio.EnvIO, remoteHist *history.History) error {
	extra := missingFrom(remoteHist.Entries, env.History.Entries)
	if err := e.replay(env.Name, extra); err != nil {
		return err
	}
	return e.finishPull(env, remoteIO, remoteHist)
}

// merge applies the remote-only entries, then appends the local-only
// entries on top with fresh timestamps so the merged log stays ordered.
// Local-only entries are already applied to the materialized environment;
// one is re-replayed only when the remote-only replay touched one of its
// packages and may have overwritten the local outcome.
func (e *Engine) merge(env *Environment, remoteIO envio.EnvIO, remoteHist *history.History) error {
	local := env.History
	remoteExtra := missingFrom(remoteHist.Entries, local.Entries)
	localExtra := missingFrom(local.Entries, remoteHist.Entries)

	if err := e.replay(env.Name, remoteExtra); err != nil {
		return err
	}

	merged := &history.History{
		Name:     remoteHist.Name,
		ID:       remoteHist.ID,
		Channels: remoteHist.Channels,
		Entries:  append([]history.Entry(nil), remoteHist.Entries...),
	}
	merged.AppendChannels(local.Channels)
	remoteTouched := touchedVersions(remoteExtra)
	for _, entry := range localExtra {
		if needsReapply(entry, remoteTouched) {
			if err := e.replay(env.Name, []history.Entry{entry}); err != nil {
				return err
			}
		}
		entry.Timestamp = merged.NextTimestamp(time.Now())
		entry.Debug = e.Debug
		if err := merged.Append(entry); err != nil {
			return err
		}
	}

	env.History = merged
	if err := env.IO.WriteAll(merged); err != nil {
		return err
	}
	e.observe(env.Name, remoteIO)
	e.event(env.Name, store.EventPull, remoteIO.Dir)
	return nil
}

// finishPull installs the remote files as the local state and records
// the pull. The remote bytes are copied verbatim rather than re-encoded.
func (e *Engine) finishPull(env *Environment, remoteIO envio.EnvIO, remoteHist *history.History) error {
	if err := envio.OverwriteLocal(env.IO, remoteIO); err != nil {
		return err
	}
	env.History = remoteHist
	e.observe(env.Name, remoteIO)
	e.event(env.Name, store.EventPull, remoteIO.Dir)
	return nil
}

func (e *Engine) replay(name string, entries []history.Entry) error {
	applied, err := e.Managers.Replay(name, entries)
	if err != nil {
		return fmt.Errorf("pull applied %d of %d actions before failing, local history left unchanged: %w", applied, len(entries), err)
	}
	return nil
}

func (e *Engine) remoteIO(env *Environment) (envio.EnvIO, error) {
	dir, err := env.IO.RemoteDir()
	if err != nil {
		return envio.EnvIO{}, &RemoteUnavailableError{Err: err}
	}
	return envio.New(dir), nil
}

func (e *Engine) observe(envName string, remote envio.EnvIO) {
	if e.Store == nil {
		return
	}
	size, mtime, ok := remote.Stat()
	if !ok {
		return
	}
	_ = e.Store.PutObservation(&store.Observation{
		Env:        envName,
		RemotePath: remote.HistoryPath(),
		SizeBytes:  size,
		ModifiedAt: mtime,
		ObservedAt: time.Now(),
	})
}

func (e *Engine) event(envName, kind, detail string) {
	if e.Store == nil {
		return
	}
	_ = e.Store.RecordSyncEvent(envName, kind, detail)
}
