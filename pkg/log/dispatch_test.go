package log

import (
	"sync"
	"testing"
	"time"
)

// recordingSink collects delivered events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Handle(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

func TestLevel_Codes(t *testing.T) {
	// The host ABI depends on these exact values.
	tests := []struct {
		level Level
		want  int
	}{
		{LevelTrace, -1},
		{LevelDebug, 0},
		{LevelInfo, 1},
		{LevelWarn, 2},
		{LevelError, 3},
	}

	for _, tt := range tests {
		if got := tt.level.Code(); got != tt.want {
			t.Errorf("%v.Code() = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestDispatcher_DeliversToSink(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	sink := &recordingSink{}
	d.Register(sink)

	d.Emit(Event{Level: LevelInfo, Message: "hello"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != LevelInfo || events[0].Message != "hello" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestDispatcher_DropsWithoutSink(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	// No sink registered; events must be discarded without blocking.
	d.Emit(Event{Level: LevelInfo, Message: "dropped"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	sink := &recordingSink{}
	d.Register(sink)
	d.Emit(Event{Level: LevelInfo, Message: "kept"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	events := sink.Events()
	if len(events) != 1 || events[0].Message != "kept" {
		t.Errorf("events = %+v, want only the post-registration event", events)
	}
}

func TestDispatcher_RegisterReplacesSink(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	first := &recordingSink{}
	second := &recordingSink{}

	d.Register(first)
	d.Emit(Event{Level: LevelInfo, Message: "one"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	d.Register(second)
	d.Emit(Event{Level: LevelInfo, Message: "two"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	if got := first.Events(); len(got) != 1 || got[0].Message != "one" {
		t.Errorf("first sink events = %+v", got)
	}
	if got := second.Events(); len(got) != 1 || got[0].Message != "two" {
		t.Errorf("second sink events = %+v", got)
	}
}

func TestDispatcher_SlowSinkDoesNotBlockEmit(t *testing.T) {
	d := NewDispatcher(4)
	defer d.Close()

	release := make(chan struct{})
	d.Register(SinkFunc(func(Event) {
		<-release
	}))

	// Far more events than the queue holds; Emit must return promptly and
	// drop the overflow rather than wait for the stuck sink.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Emit(Event{Level: LevelInfo, Message: "burst"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked behind a slow sink")
	}

	close(release)
}

func TestDispatcher_StripsNulBytes(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	sink := &recordingSink{}
	d.Register(sink)

	d.Emit(Event{Level: LevelWarn, Message: "bad\x00byte"})
	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	events := sink.Events()
	if len(events) != 1 || events[0].Message != "badbyte" {
		t.Errorf("events = %+v, want sanitized message", events)
	}
}

func TestDispatcher_EmitAfterClose(t *testing.T) {
	d := NewDispatcher(0)
	d.Close()

	// Must not panic or block.
	d.Emit(Event{Level: LevelInfo, Message: "late"})
	if err := d.Drain(time.Second); err != nil {
		t.Errorf("Drain() after Close = %v, want nil", err)
	}
}

func TestEventLogger_ForwardsLevelsAndFields(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	sink := &recordingSink{}
	d.Register(sink)

	l := NewEventLogger(d)
	l.Trace("t")
	l.Debug("d")
	l.Info("connected", String("address", "1.2.3.4:5000"))
	l.Warn("w")
	l.Error("e")

	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}

	events := sink.Events()
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}

	wantLevels := []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i, want := range wantLevels {
		if events[i].Level != want {
			t.Errorf("event %d level = %v, want %v", i, events[i].Level, want)
		}
	}

	if events[2].Message != "connected address=1.2.3.4:5000" {
		t.Errorf("formatted message = %q", events[2].Message)
	}
}

func TestTee_ForwardsToAllTargets(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	sink := &recordingSink{}
	d.Register(sink)

	l := Tee(NewNoopLogger(), NewEventLogger(d))
	l.Info("both")

	if err := d.Drain(time.Second); err != nil {
		t.Fatalf("Drain() = %v", err)
	}
	if events := sink.Events(); len(events) != 1 || events[0].Message != "both" {
		t.Errorf("events = %+v", events)
	}
}
