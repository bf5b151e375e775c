package log

import (
	"fmt"
	"strings"
)

// EventLogger is a Logger that forwards every record to a Dispatcher as an
// Event. Fields are flattened into the message as key=value pairs so the
// host sees a single string per record.
type EventLogger struct {
	dispatcher *Dispatcher
}

// NewEventLogger creates a logger emitting into the given dispatcher.
func NewEventLogger(d *Dispatcher) *EventLogger {
	return &EventLogger{dispatcher: d}
}

func (l *EventLogger) Trace(msg string, fields ...Field) {
	l.dispatcher.Emit(Event{Level: LevelTrace, Message: formatMessage(msg, fields)})
}

func (l *EventLogger) Debug(msg string, fields ...Field) {
	l.dispatcher.Emit(Event{Level: LevelDebug, Message: formatMessage(msg, fields)})
}

func (l *EventLogger) Info(msg string, fields ...Field) {
	l.dispatcher.Emit(Event{Level: LevelInfo, Message: formatMessage(msg, fields)})
}

func (l *EventLogger) Warn(msg string, fields ...Field) {
	l.dispatcher.Emit(Event{Level: LevelWarn, Message: formatMessage(msg, fields)})
}

func (l *EventLogger) Error(msg string, fields ...Field) {
	l.dispatcher.Emit(Event{Level: LevelError, Message: formatMessage(msg, fields)})
}

func formatMessage(msg string, fields []Field) string {
	if len(fields) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", f.Value)
	}
	return b.String()
}
