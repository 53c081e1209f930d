package reconcile

import (
	"time"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/store"
)

// Status classifies local history relative to remote history.
type Status int

const (
	// StatusUnknown means neither side has a history file, or staleness
	// could not be determined.
	StatusUnknown Status = iota
	// StatusInSync means the histories appear identical.
	StatusInSync
	// StatusLocalBehind means the remote has actions the local copy lacks.
	StatusLocalBehind
	// StatusRemoteBehind means the local copy has actions the remote lacks.
	StatusRemoteBehind
)

func (s Status) String() string {
	switch s {
	case StatusInSync:
		return "in sync"
	case StatusLocalBehind:
		return "local behind remote"
	case StatusRemoteBehind:
		return "remote behind local"
	}
	return "unknown"
}

// Comparator reports the sync status of an environment's local history
// file against its remote counterpart.
type Comparator interface {
	Compare(env string, local, remote envio.EnvIO) (Status, error)
}

// StatComparator detects staleness from file size and modification time
// alone, without reading either history file. The previous remote
// observation is cached in the store so a touched-but-same-size remote
// still registers as changed.
type StatComparator struct {
	Store *store.Store
}

// Compare stats both history files, classifies the pair, and records the
// current remote observation for the next comparison.
func (c *StatComparator) Compare(env string, local, remote envio.EnvIO) (Status, error) {
	localSize, _, localOK := local.Stat()
	remoteSize, remoteMod, remoteOK := remote.Stat()

	status := c.classify(env, localSize, localOK, remoteSize, remoteMod, remoteOK)

	if remoteOK && c.Store != nil {
		obs := &store.Observation{
			Env:        env,
			RemotePath: remote.HistoryPath(),
			SizeBytes:  remoteSize,
			ModifiedAt: remoteMod,
			ObservedAt: time.Now(),
		}
		if err := c.Store.PutObservation(obs); err != nil {
			return status, err
		}
	}
	return status, nil
}

func (c *StatComparator) classify(env string, localSize int64, localOK bool, remoteSize int64, remoteMod time.Time, remoteOK bool) Status {
	switch {
	case !localOK && !remoteOK:
		return StatusUnknown
	case !localOK:
		return StatusLocalBehind
	case !remoteOK:
		return StatusRemoteBehind
	case remoteSize > localSize:
		return StatusLocalBehind
	}

	// A remote modification since the last observation means the remote
	// was rewritten and the local copy may be stale, whatever the sizes
	// say. Checked before the size comparison below so a shrunken remote
	// still registers as changed.
	if c.Store != nil {
		if obs, err := c.Store.GetObservation(env); err == nil && obs != nil {
			if !remoteMod.Equal(obs.ModifiedAt) {
				return StatusLocalBehind
			}
		}
	}
	if localSize > remoteSize {
		return StatusRemoteBehind
	}
	return StatusInSync
}
