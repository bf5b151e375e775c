// Package log provides structured logging for the tunnel agent and the
// log-event surface exposed to embedding hosts.
//
// The Logger interface can be implemented by any logging library; adapters
// are provided for zerolog and a no-op logger for tests.
//
// Host processes observe the agent through log events rather than log lines:
// a Dispatcher fans Event values out to a registered Sink through a bounded
// queue drained by a dedicated goroutine, so a slow or misbehaving sink can
// never stall the connection loop. Level codes match the host ABI, with
// LevelTrace at -1 through LevelError at 3.
package log
