// Package agent provides the embeddable playit tunnel agent.
//
// An Agent authenticates against the relay API, keeps a tunnel session
// alive, and publishes its connection state through a snapshot registry the
// host can read at any time without blocking.
//
// # Basic usage
//
//	cfg := agent.Config{SecretKey: "your-agent-key"}
//	a, err := agent.New(cfg)
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
// # Lifecycle
//
// One lifecycle run exists per successful Start. The run moves through
// Connecting, Connected, and Disconnected as relay calls succeed and fail; a
// rejected credential parks the run in Error, which only an explicit Stop
// (or a fresh agent) leaves. Start on a live run is a no-op, as is Stop on a
// stopped one.
//
// # Dependency injection
//
// For testing, inject a fake relay client and a silent logger:
//
//	a, err := agent.New(cfg,
//	    agent.WithRelayClient(fakeClient),
//	    agent.WithLogger(log.NewNoopLogger()),
//	)
package agent
