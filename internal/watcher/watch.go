package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/reconcile"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// resyncInterval is the fallback full re-check period for file systems
// where fsnotify events are unreliable (network mounts in particular).
const resyncInterval = 5 * time.Minute

// Target is one environment whose remote history file is watched.
type Target struct {
	Env    string
	Local  envio.EnvIO
	Remote envio.EnvIO
}

// Watcher watches each target's remote directory and flags environments
// that fall behind their remote.
type Watcher struct {
	store   *store.Store
	targets []Target
	cmp     *reconcile.StatComparator

	fs     *fsnotify.Watcher
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Watcher instance.
func New(st *store.Store, targets []Target) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no environments with a configured remote to watch")
	}
	return &Watcher{
		store:   st,
		targets: targets,
		cmp:     &reconcile.StatComparator{Store: st},
		stopCh:  make(chan struct{}),
	}, nil
}

// Start checks every target once, registers the fsnotify watches and
// begins the event loop.
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fs watcher: %w", err)
	}
	w.fs = fs

	for _, t := range w.targets {
		if err := fs.Add(t.Remote.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "watcher: cannot watch %s: %v\n", t.Remote.Dir, err)
		}
	}

	w.checkAll()
	w.ticker = time.NewTicker(resyncInterval)

	w.wg.Add(1)
	go w.run()

	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !isHistoryEvent(ev) {
				continue
			}
			w.checkDir(filepath.Dir(ev.Name))

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: %v\n", err)

		case <-w.ticker.C:
			w.checkAll()

		case <-w.stopCh:
			return
		}
	}
}

// isHistoryEvent filters for writes and replacements of the history
// file. Editors and git checkouts often replace the file, which arrives
// as Create or Rename rather than Write.
func isHistoryEvent(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != envio.HistoryFile {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) checkDir(dir string) {
	for _, t := range w.targets {
		if t.Remote.Dir == dir {
			w.check(t)
		}
	}
}

func (w *Watcher) checkAll() {
	for _, t := range w.targets {
		w.check(t)
	}
}

func (w *Watcher) check(t Target) {
	status, err := w.cmp.Compare(t.Env, t.Local, t.Remote)
	if err != nil {
		fmt.Fprintf(os.Stderr, "watcher: %s: %v\n", t.Env, err)
		return
	}
	if status == reconcile.StatusLocalBehind {
		if err := w.store.RecordSyncEvent(t.Env, store.EventStale, t.Remote.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "watcher: %s: recording stale event: %v\n", t.Env, err)
		}
		fmt.Printf("%s is behind its remote (%s); run 'envtrack pull --name %s'\n",
			t.Env, t.Remote.Dir, t.Env)
	}
}

// Stop halts the event loop and closes the fsnotify watches.
func (w *Watcher) Stop() error {
	close(w.stopCh)

	if w.ticker != nil {
		w.ticker.Stop()
	}
	if w.fs != nil {
		_ = w.fs.Close()
	}

	w.wg.Wait()
	return nil
}
