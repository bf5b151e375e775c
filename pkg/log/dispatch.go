package log

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultQueueSize is the default capacity of a Dispatcher's event queue.
const DefaultQueueSize = 256

// ErrDrainTimeout is returned when queued events are not delivered in time.
var ErrDrainTimeout = errors.New("log: drain timeout")

// Event is a single log record crossing the host boundary.
type Event struct {
	Level   Level
	Message string
}

// Sink receives log events from a Dispatcher.
// Handle is invoked from the dispatcher's delivery goroutine; a slow Handle
// delays delivery but never the emitting code.
type Sink interface {
	Handle(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Handle calls f(ev).
func (f SinkFunc) Handle(ev Event) {
	f(ev)
}

// Dispatcher fans log events out to the currently registered sink.
//
// Emission is decoupled from delivery through a bounded queue drained by a
// dedicated goroutine: Emit never blocks, and events are dropped when the
// queue is full or when no sink is registered. Each event is delivered at
// most once.
type Dispatcher struct {
	mu     sync.RWMutex
	sink   Sink
	closed bool

	queue chan dispatchItem
	done  chan struct{}
}

// dispatchItem carries either an event or a drain barrier through the queue.
type dispatchItem struct {
	event   Event
	barrier chan struct{}
}

// NewDispatcher creates a dispatcher and starts its delivery goroutine.
// A non-positive queueSize selects DefaultQueueSize.
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		queue: make(chan dispatchItem, queueSize),
		done:  make(chan struct{}),
	}
	go d.deliver()
	return d
}

// Register replaces the current sink. A nil sink drops all events.
// The replacement is atomic: an event is delivered to exactly one of the old
// or the new sink, never both.
func (d *Dispatcher) Register(sink Sink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

// Emit queues an event for delivery. Never blocks; the event is dropped if
// the queue is full. NUL bytes are stripped so messages stay safe to hand
// across the host boundary.
func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if strings.ContainsRune(ev.Message, 0) {
		ev.Message = strings.ReplaceAll(ev.Message, "\x00", "")
	}

	select {
	case d.queue <- dispatchItem{event: ev}:
	default:
	}
}

// Drain blocks until every event queued before the call has been delivered,
// or the timeout expires. Returns nil immediately if the dispatcher is closed.
func (d *Dispatcher) Drain(timeout time.Duration) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return nil
	}
	d.mu.RUnlock()

	deadline := time.After(timeout)
	barrier := make(chan struct{})

	select {
	case d.queue <- dispatchItem{barrier: barrier}:
	case <-deadline:
		return ErrDrainTimeout
	}

	select {
	case <-barrier:
		return nil
	case <-deadline:
		return ErrDrainTimeout
	}
}

// Close stops the delivery goroutine after the queue is drained.
// Events emitted after Close are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.queue)
	<-d.done
}

func (d *Dispatcher) deliver() {
	defer close(d.done)
	for item := range d.queue {
		if item.barrier != nil {
			close(item.barrier)
			continue
		}

		d.mu.RLock()
		sink := d.sink
		d.mu.RUnlock()

		if sink != nil {
			sink.Handle(item.event)
		}
	}
}
