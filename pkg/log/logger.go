package log

import "time"

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog, zap, logrus, or any other logging library.
type Logger interface {
	// Trace logs a trace-level message with fields.
	Trace(msg string, fields ...Field)

	// Debug logs a debug-level message with fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with fields.
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Tee returns a Logger that forwards each record to every target.
func Tee(targets ...Logger) Logger {
	return teeLogger{targets: targets}
}

type teeLogger struct {
	targets []Logger
}

func (t teeLogger) Trace(msg string, fields ...Field) {
	for _, l := range t.targets {
		l.Trace(msg, fields...)
	}
}

func (t teeLogger) Debug(msg string, fields ...Field) {
	for _, l := range t.targets {
		l.Debug(msg, fields...)
	}
}

func (t teeLogger) Info(msg string, fields ...Field) {
	for _, l := range t.targets {
		l.Info(msg, fields...)
	}
}

func (t teeLogger) Warn(msg string, fields ...Field) {
	for _, l := range t.targets {
		l.Warn(msg, fields...)
	}
}

func (t teeLogger) Error(msg string, fields ...Field) {
	for _, l := range t.targets {
		l.Error(msg, fields...)
	}
}
