package conn

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Common state machine errors.
var (
	// ErrInvalidTransition is returned when a transition violates the state graph.
	ErrInvalidTransition = errors.New("conn: invalid state transition")

	// ErrShutdownTimeout is returned when workers do not finish in time.
	ErrShutdownTimeout = errors.New("conn: shutdown timeout")
)

// Machine is the guarded connection state machine.
//
// The lifecycle engine is the only writer; transitions are validated against
// the state graph documented in the package comment. Reads are safe from any
// goroutine and never block behind relay activity.
type Machine struct {
	mu     sync.RWMutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMachine creates a machine in StateStopped.
func NewMachine() *Machine {
	return &Machine{state: StateStopped}
}

// State returns the current connection state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Running reports whether a run is live. A run parked in StateError still
// counts as live: it holds the configuration until an explicit stop or a
// fresh initialization tears it down.
func (m *Machine) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state != StateStopped
}

// Transition moves the machine to a new state, returning the previous state.
// Returns ErrInvalidTransition and leaves the state untouched if the move
// violates the state graph.
func (m *Machine) Transition(to State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.state
	if !validTransition(from, to) {
		return from, ErrInvalidTransition
	}
	m.state = to
	return from, nil
}

// Reset forces the machine back to StateStopped regardless of the current
// state. Used by stop and by invariant-failure recovery, both of which must
// always succeed.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateStopped
}

func validTransition(from, to State) bool {
	switch from {
	case StateStopped:
		return to == StateConnecting
	case StateConnecting:
		return to == StateConnected || to == StateDisconnected || to == StateError || to == StateStopped
	case StateConnected:
		return to == StateDisconnected || to == StateStopped
	case StateDisconnected:
		return to == StateConnecting || to == StateStopped
	case StateError:
		return to == StateStopped
	default:
		return false
	}
}

// SetCancel stores the cancel function for the current run.
func (m *Machine) SetCancel(cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel = cancel
}

// Cancel signals the current run to shut down. Safe to call when no run is
// active.
func (m *Machine) Cancel() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AddWorker increments the worker count.
func (m *Machine) AddWorker() {
	m.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (m *Machine) WorkerDone() {
	m.wg.Done()
}

// WaitWithTimeout waits for all workers to finish.
// Returns ErrShutdownTimeout if the timeout expires first.
func (m *Machine) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
