// Package relay defines the relay control API consumed by the lifecycle
// engine, and an HTTP implementation of it against the playit web API.
package relay

import (
	"context"
	"errors"
)

// Errors representing relay failure classes. The lifecycle engine treats
// ErrAuthRejected as fatal to the run; everything else is transient and
// retried.
var (
	// ErrAuthRejected means the relay refused the agent's secret key.
	ErrAuthRejected = errors.New("relay: authentication rejected")

	// ErrSessionLost means an established session is no longer serving.
	ErrSessionLost = errors.New("relay: session lost")
)

// Session is an established relay session.
type Session struct {
	// Address is the public relay address assigned to the tunnel.
	Address string
}

// Client is the relay capability the lifecycle engine depends on.
//
// Every operation may fail or take arbitrarily long; implementations must
// honor context cancellation so the engine can abandon in-flight calls on
// shutdown.
type Client interface {
	// Connect authenticates against the relay and negotiates a session.
	// Returns ErrAuthRejected when the credential is refused; any other
	// error is treated as transient.
	Connect(ctx context.Context) (*Session, error)

	// PollHealth checks that the session is still serving traffic.
	// Returns nil when healthy, ErrSessionLost when the relay dropped the
	// session, or a transient error on network failure.
	PollHealth(ctx context.Context, s *Session) error

	// Disconnect tears the session down. Called exactly once per
	// established session, including during shutdown.
	Disconnect(ctx context.Context, s *Session) error
}
