// Package status holds the latest connection status snapshot for readers.
package status

import (
	"sync"

	"github.com/rooootdev/playit-ios/pkg/conn"
)

// Snapshot is an immutable view of the agent's connection state.
//
// LastAddress is set while and after a successful connection and retained
// across transient disconnects; it is cleared on stop and on
// re-initialization. LastError records the most recent failure and is
// cleared on the next successful connection. Empty strings mean "not set".
type Snapshot struct {
	Code        conn.State
	LastAddress string
	LastError   string
}

// Registry is the process-wide holder of the latest Snapshot.
//
// The lifecycle engine is the single writer; any number of goroutines may
// read concurrently. Reads copy the snapshot and never block behind relay
// activity.
type Registry struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewRegistry creates a registry reporting StateStopped.
func NewRegistry() *Registry {
	return &Registry{snap: Snapshot{Code: conn.StateStopped}}
}

// Publish replaces the current snapshot.
func (r *Registry) Publish(s Snapshot) {
	r.mu.Lock()
	r.snap = s
	r.mu.Unlock()
}

// Read returns a copy of the latest published snapshot.
func (r *Registry) Read() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}
