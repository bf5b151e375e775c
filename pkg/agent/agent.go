package agent

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rooootdev/playit-ios/pkg/conn"
	"github.com/rooootdev/playit-ios/pkg/log"
	"github.com/rooootdev/playit-ios/pkg/relay"
	"github.com/rooootdev/playit-ios/pkg/status"
)

// ShutdownTimeout is the maximum time Stop waits for the engine to exit.
const ShutdownTimeout = 30 * time.Second

// drainTimeout bounds the wait for queued log events during Stop.
const drainTimeout = 5 * time.Second

// Agent is an embeddable playit tunnel agent.
// Use New to create an instance, then Start to begin connecting.
// All methods are safe to call concurrently from any goroutine.
type Agent struct {
	config     Config
	machine    *conn.Machine
	registry   *status.Registry
	dispatcher *log.Dispatcher
	client     relay.Client
	logger     log.Logger

	mu sync.Mutex
}

// New creates a new Agent with the given configuration.
// The agent is created in StateStopped; call Start to begin connecting.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Agent, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dispatcher := o.dispatcher
	if dispatcher == nil {
		dispatcher = log.NewDispatcher(0)
	}

	// Every engine log also crosses the host boundary as an event.
	logger := log.Tee(o.logger, log.NewEventLogger(dispatcher))

	client := o.client
	if client == nil {
		var doer relay.Doer = o.httpClient
		if doer == nil {
			doer = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		client = relay.NewHTTPClient(cfg.APIURL, cfg.SecretKey, doer, o.logger)
	}

	return &Agent{
		config:     cfg,
		machine:    conn.NewMachine(),
		registry:   status.NewRegistry(),
		dispatcher: dispatcher,
		client:     client,
		logger:     logger,
	}, nil
}

// Start begins the connection lifecycle in the background.
// Returns immediately after the run is spawned; progress is observable via
// Status and log events. Starting a live run (including one parked in the
// Error state) is a no-op returning nil.
// The provided context bounds the lifetime of the run.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.machine.Running() {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.machine.SetCancel(cancel)

	e := newEngine(a.config, a.machine, a.registry, a.client, a.logger)
	e.ctx = runCtx

	// Publish Connecting before the caller returns so a subsequent Start
	// observes the live run.
	if err := e.begin(); err != nil {
		cancel()
		return err
	}

	a.machine.AddWorker()
	go func() {
		defer a.machine.WorkerDone()
		e.run(runCtx)
	}()

	return nil
}

// Stop tears the current run down and blocks until it has fully exited:
// any in-flight relay call is canceled, an established session is
// disconnected, and queued log events are delivered. After Stop returns the
// status reads Stopped with address and error cleared, and no further log
// events are emitted. Stopping a stopped agent is a no-op returning nil.
func (a *Agent) Stop() error {
	a.mu.Lock()
	if !a.machine.Running() {
		a.mu.Unlock()
		return nil
	}
	a.machine.Cancel()
	a.mu.Unlock()

	waitErr := a.machine.WaitWithTimeout(ShutdownTimeout)

	a.mu.Lock()
	a.machine.Reset()
	a.registry.Publish(status.Snapshot{Code: conn.StateStopped})
	a.mu.Unlock()

	a.logger.Info("agent stopped")

	if err := a.dispatcher.Drain(drainTimeout); err != nil {
		a.logger.Warn("log queue not drained", log.Err(err))
	}
	if waitErr != nil {
		return ErrShutdownTimeout
	}
	return nil
}

// Status returns a copy of the latest published status snapshot.
// It never blocks behind relay activity and is safe from any goroutine.
func (a *Agent) Status() status.Snapshot {
	return a.registry.Read()
}
