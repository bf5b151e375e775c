package agent

import (
	"context"
	"errors"
	"time"

	"github.com/rooootdev/playit-ios/pkg/conn"
	"github.com/rooootdev/playit-ios/pkg/log"
	"github.com/rooootdev/playit-ios/pkg/relay"
	"github.com/rooootdev/playit-ios/pkg/status"
)

// engine drives the connection lifecycle for a single run.
//
// It is logically single-threaded: all relay calls, the health ticker, and
// the inter-attempt delay are suspension points inside run's goroutine. The
// registry is updated on every transition before any further relay
// interaction, so readers never observe a stale state.
type engine struct {
	cfg      Config
	machine  *conn.Machine
	registry *status.Registry
	client   relay.Client
	logger   log.Logger

	// ctx bounds the run. Transitions are refused once it is canceled, so a
	// run that outlives a timed-out Stop can no longer publish.
	ctx context.Context

	lastAddress string
	lastError   string
	lastWarned  string
}

func newEngine(cfg Config, m *conn.Machine, r *status.Registry, c relay.Client, l log.Logger) *engine {
	return &engine{
		cfg:      cfg,
		machine:  m,
		registry: r,
		client:   c,
		logger:   l,
	}
}

// begin performs the initial Stopped -> Connecting transition on the
// caller's goroutine, before the run is spawned.
func (e *engine) begin() error {
	if err := e.apply(conn.StateConnecting); err != nil {
		return err
	}
	e.logger.Info("connecting to relay", log.String("api_url", e.cfg.APIURL))
	return nil
}

// run executes the lifecycle loop until the context is canceled or the run
// parks in the Error state. begin must have been called first.
func (e *engine) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		sess, err := e.client.Connect(ctx)
		if ctx.Err() != nil {
			if sess != nil {
				e.teardown(sess)
			}
			return
		}

		switch {
		case err == nil:
			if e.setConnected(sess.Address) != nil {
				e.teardown(sess)
				return
			}
			lost := e.healthLoop(ctx, sess)
			e.teardown(sess)
			if !lost {
				return
			}
		case errors.Is(err, relay.ErrAuthRejected):
			e.setAuthError(err)
			return
		default:
			if e.setDisconnected(err) != nil {
				return
			}
		}

		// Fixed backoff: one connection attempt per poll interval, retried
		// indefinitely.
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.cfg.PollInterval):
		}

		if e.setConnecting() != nil {
			return
		}
	}
}

// healthLoop polls session health until the session is lost (returns true)
// or the context is canceled (returns false).
func (e *engine) healthLoop(ctx context.Context, sess *relay.Session) bool {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			err := e.client.PollHealth(ctx, sess)
			if ctx.Err() != nil {
				return false
			}
			if err != nil {
				if e.setDisconnected(err) != nil {
					return false
				}
				return true
			}
			e.logger.Trace("tunnel healthy", log.String("address", sess.Address))
		}
	}
}

// teardown disconnects an established session. Shutdown must not leave a
// session half-established, so this uses a fresh context.
func (e *engine) teardown(sess *relay.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.HTTPTimeout)
	defer cancel()
	if err := e.client.Disconnect(ctx, sess); err != nil {
		e.logger.Debug("session disconnect failed", log.Err(err))
	}
}

func (e *engine) setConnecting() error {
	if err := e.apply(conn.StateConnecting); err != nil {
		return err
	}
	e.logger.Info("reconnecting to relay")
	return nil
}

func (e *engine) setConnected(address string) error {
	e.lastAddress = address
	e.lastError = ""
	e.lastWarned = ""
	if err := e.apply(conn.StateConnected); err != nil {
		return err
	}
	e.logger.Info("tunnel established", log.String("address", address))
	return nil
}

func (e *engine) setDisconnected(cause error) error {
	e.lastError = cause.Error()
	if err := e.apply(conn.StateDisconnected); err != nil {
		return err
	}
	// A repeat of the previous failure is demoted to debug so retry loops
	// do not flood the log at warn level.
	if e.lastError == e.lastWarned {
		e.logger.Debug("tunnel still disconnected", log.Err(cause))
	} else {
		e.lastWarned = e.lastError
		e.logger.Warn("tunnel disconnected", log.Err(cause))
	}
	return nil
}

func (e *engine) setAuthError(cause error) {
	e.lastError = cause.Error()
	if e.apply(conn.StateError) != nil {
		return
	}
	e.logger.Error("relay rejected credentials, not retrying", log.Err(cause))
}

// apply transitions the machine and publishes the matching snapshot.
// A rejected transition means engine bookkeeping is corrupt; the run is
// parked in Stopped rather than continuing with undefined state.
func (e *engine) apply(to conn.State) error {
	if e.ctx != nil {
		if err := e.ctx.Err(); err != nil {
			return err
		}
	}

	if _, err := e.machine.Transition(to); err != nil {
		e.machine.Reset()
		e.registry.Publish(status.Snapshot{
			Code:      conn.StateStopped,
			LastError: err.Error(),
		})
		e.logger.Error("lifecycle invariant violated, run aborted",
			log.Err(err),
			log.String("target", to.String()),
		)
		return err
	}

	e.registry.Publish(status.Snapshot{
		Code:        to,
		LastAddress: e.lastAddress,
		LastError:   e.lastError,
	})
	return nil
}
