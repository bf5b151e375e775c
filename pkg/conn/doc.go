// Package conn implements the connection state machine for the tunnel agent.
//
// A Machine holds the single authoritative connection state and validates
// every transition against the allowed state graph:
//
//	Stopped -> Connecting
//	Connecting -> Connected | Disconnected | Error | Stopped
//	Connected -> Disconnected | Stopped
//	Disconnected -> Connecting | Stopped
//	Error -> Stopped
//
// The numeric values of each State are part of the host ABI and match the
// status codes reported by the control surface.
package conn
