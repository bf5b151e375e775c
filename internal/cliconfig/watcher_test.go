package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_FiresAfterChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("secret_key = \"a\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var fired atomic.Int32
	w := NewWatcher(path, 20*time.Millisecond, Logger(), func() {
		fired.Add(1)
	})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("secret_key = \"b\"\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fired.Load() > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watcher did not fire after config change")
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("secret_key = \"a\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var fired atomic.Int32
	w := NewWatcher(path, 100*time.Millisecond, Logger(), func() {
		fired.Add(1)
	})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// A burst of writes within the debounce window collapses to one callback.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("secret_key = \"b\"\n"), 0o600); err != nil {
			t.Fatalf("rewrite config: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times for one burst, want 1", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("secret_key = \"a\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var fired atomic.Int32
	w := NewWatcher(path, 20*time.Millisecond, Logger(), func() {
		fired.Add(1)
	})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(other, []byte("noise"), 0o600); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("callback fired %d times for an unrelated file, want 0", got)
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := NewWatcher("/nonexistent/config.toml", 0, Logger(), func() {})
	w.Stop() // must not panic
}
