package agent

import "errors"

// Errors returned by the public API; check with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("playit: invalid configuration")

	// ErrAlreadyRunning is returned when a live run prevents the operation.
	ErrAlreadyRunning = errors.New("playit: agent already running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("playit: shutdown timeout")
)
