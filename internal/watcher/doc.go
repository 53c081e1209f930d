// Package watcher implements the background remote watcher.
//
// The watcher keeps an fsnotify watch on every tracked environment's
// remote directory. When a remote history file is rewritten (a teammate
// pushed, or a git pull refreshed the shared directory), the staleness
// detector is re-run and environments that fall behind are recorded in
// the sync journal and announced on stdout. A slow ticker re-checks all
// targets as a fallback for file systems with unreliable notifications.
//
// Key features:
//   - fsnotify watches on remote directories (no polling of file contents)
//   - Stat-only staleness checks through the shared detector
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	st, err := store.New("~/.envtrack/envtrack.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	w, err := watcher.New(st, targets)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Start watching in foreground
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
//	// Or start as daemon
//	if err := w.StartDaemon("~/.envtrack/watch.pid", "~/.envtrack/watch.log"); err != nil {
//		log.Fatal(err)
//	}
package watcher
