package log

// Level identifies the severity of a log event.
// The numeric values are exposed to host processes and must not change.
type Level int

const (
	LevelTrace Level = -1
	LevelDebug Level = 0
	LevelInfo  Level = 1
	LevelWarn  Level = 2
	LevelError Level = 3
)

// String returns a human-readable representation of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Code returns the integer level code exposed to host processes.
func (l Level) Code() int {
	return int(l)
}
