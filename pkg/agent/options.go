package agent

import (
	"github.com/rooootdev/playit-ios/pkg/log"
	"github.com/rooootdev/playit-ios/pkg/relay"
)

// Option configures optional behavior of an Agent.
type Option func(*options)

// options holds the optional configuration for an Agent.
type options struct {
	logger     log.Logger
	dispatcher *log.Dispatcher
	client     relay.Client
	httpClient relay.Doer
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a logger for operator-facing structured logging.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDispatcher sets the dispatcher carrying log events to the embedding
// host. If not provided, the agent creates its own; sharing one across
// agents lets a host keep a single registered sink across re-initializations.
func WithDispatcher(d *log.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithRelayClient injects a relay client implementation, replacing the
// default HTTP client. Intended for tests and alternate transports.
func WithRelayClient(client relay.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for relay API communication.
// Ignored when WithRelayClient is used.
func WithHTTPClient(client relay.Doer) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
