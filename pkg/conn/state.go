package conn

// State represents the connection state of the tunnel agent.
// The numeric values are exposed to host processes as status codes
// and must not be renumbered.
type State int

const (
	StateStopped      State = 0
	StateConnecting   State = 1
	StateConnected    State = 2
	StateDisconnected State = 3
	StateError        State = 4
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Code returns the integer status code exposed to host processes.
func (s State) Code() int {
	return int(s)
}
