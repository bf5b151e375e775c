// Package playit provides an embeddable playit.gg tunnel agent.
//
// Example usage:
//
//	cfg := playit.Config{SecretKey: "your-agent-key"}
//	a, err := playit.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	// ... observe a.Status() until shutdown ...
//	if err := a.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// Hosts whose embedding boundary is a set of free functions (init, start,
// stop, status, log callback) should use pkg/control instead.
package playit

import (
	"github.com/rooootdev/playit-ios/pkg/agent"
	"github.com/rooootdev/playit-ios/pkg/status"
)

// Config holds the configuration for the tunnel agent.
// SecretKey is required; everything else has defaults.
type Config = agent.Config

// Agent is the embeddable tunnel agent. See pkg/agent for details.
type Agent = agent.Agent

// Snapshot is an immutable view of the agent's connection state.
type Snapshot = status.Snapshot

// Option configures optional behavior of an Agent.
type Option = agent.Option

// New creates a new tunnel agent with the given configuration.
func New(cfg Config, opts ...Option) (*Agent, error) {
	return agent.New(cfg, opts...)
}

// DefaultAPIURL is the production playit API endpoint.
const DefaultAPIURL = agent.DefaultAPIURL
