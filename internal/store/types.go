package store

import "time"

// Observation is the staleness detector's cached view of a remote
// history file: the size and mtime last seen for an environment.
type Observation struct {
	Env        string
	RemotePath string
	SizeBytes  int64
	ModifiedAt time.Time
	ObservedAt time.Time
}

// Sync event kinds.
const (
	EventPull     = "pull"
	EventPush     = "push"
	EventConflict = "conflict"
	EventStale    = "stale"
)

// SyncEvent records one sync-related operation for the status and watch
// commands.
type SyncEvent struct {
	ID        string
	Env       string
	Kind      string
	Detail    string
	CreatedAt time.Time
}
