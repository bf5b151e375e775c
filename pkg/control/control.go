// Package control preserves the playit host call convention: a process-level
// init/start/stop/status surface backed by a single guarded agent handle.
//
// Hosts that can hold an object should use pkg/agent directly; this package
// exists for embeddings where the boundary is a set of free functions. All
// functions are safe to call concurrently from any goroutine.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rooootdev/playit-ios/pkg/agent"
	"github.com/rooootdev/playit-ios/pkg/conn"
	"github.com/rooootdev/playit-ios/pkg/log"
)

// ErrNotInitialized is returned by Start before a successful Init.
var ErrNotInitialized = errors.New("playit: not initialized")

var (
	mu      sync.Mutex
	current *agent.Agent

	// The dispatcher outlives individual agents so a sink registered once
	// keeps receiving events across re-initializations.
	dispatcher = log.NewDispatcher(0)
)

// rawConfig mirrors the JSON document the host passes to Init.
type rawConfig struct {
	SecretKey      string `json:"secret_key"`
	APIURL         string `json:"api_url"`
	PollIntervalMS int64  `json:"poll_interval_ms"`
}

// Status is the host-facing view of the agent connection state.
// Code is a conn.State value; nil pointers mean "not set".
type Status struct {
	Code        int     `json:"code"`
	LastAddress *string `json:"last_address"`
	LastError   *string `json:"last_error"`
}

// Init validates the configuration and installs a fresh agent handle.
//
// Init fails with agent.ErrAlreadyRunning while a run is live; a run parked
// in the Error state is torn down and replaced. Configuration errors are
// returned synchronously and leave any previous handle untouched.
func Init(configJSON []byte) error {
	var raw rawConfig
	if err := json.Unmarshal(configJSON, &raw); err != nil {
		return fmt.Errorf("%w: parse config: %v", agent.ErrInvalidConfig, err)
	}

	cfg := agent.Config{
		SecretKey: raw.SecretKey,
		APIURL:    raw.APIURL,
	}
	if raw.PollIntervalMS != 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	prev := current
	mu.Unlock()

	if prev != nil {
		switch prev.Status().Code {
		case conn.StateStopped:
			// Replaced below.
		case conn.StateError:
			// Teardown drains the event queue through the host's callback,
			// so it must run outside mu: Start, Stop, and GetStatus stay
			// responsive while a slow callback is fed.
			if err := prev.Stop(); err != nil {
				return err
			}
		default:
			return agent.ErrAlreadyRunning
		}
	}

	a, err := agent.New(cfg, agent.WithDispatcher(dispatcher))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if current != prev {
		return agent.ErrAlreadyRunning
	}
	if prev != nil && prev.Status().Code != conn.StateStopped {
		// Restarted while mu was released.
		return agent.ErrAlreadyRunning
	}
	current = a
	return nil
}

// Start begins the connection lifecycle. Idempotent: starting a live run is
// a no-op. Returns ErrNotInitialized before the first successful Init.
func Start() error {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return ErrNotInitialized
	}
	// Agent.Start does not block: it spawns the run and returns. Holding mu
	// across it keeps a concurrent Init from swapping the handle mid-start,
	// which would leave an orphaned run nothing can stop.
	return current.Start(context.Background())
}

// Stop tears the current run down, blocking until fully stopped.
// Idempotent: stopping a stopped agent is a no-op returning nil.
func Stop() error {
	mu.Lock()
	a := current
	mu.Unlock()

	if a == nil {
		return nil
	}
	return a.Stop()
}

// GetStatus returns the latest status snapshot. Always succeeds, never
// blocks, and reports Stopped before the first Init.
func GetStatus() Status {
	mu.Lock()
	a := current
	mu.Unlock()

	if a == nil {
		return Status{Code: conn.StateStopped.Code()}
	}

	snap := a.Status()
	return Status{
		Code:        snap.Code.Code(),
		LastAddress: optional(snap.LastAddress),
		LastError:   optional(snap.LastError),
	}
}

// SetLogCallback registers the host's log callback, atomically replacing
// any previous one. A nil callback unregisters; events emitted while no
// callback is registered are dropped.
func SetLogCallback(cb func(level int, message string)) {
	if cb == nil {
		dispatcher.Register(nil)
		return
	}
	dispatcher.Register(log.SinkFunc(func(ev log.Event) {
		cb(ev.Level.Code(), ev.Message)
	}))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
