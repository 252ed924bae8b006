package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherTriggersReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var reloads atomic.Int32
	w := New(path, func() error {
		reloads.Add(1)
		return nil
	})
	w.Start()
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("-- v2"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)
	}
	if reloads.Load() == 0 {
		t.Errorf("expected at least one reload after file change")
	}
}

func TestWatcherStopJoinsCleanly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lua")
	os.WriteFile(path, []byte("-- v1"), 0644)

	w := New(path, func() error { return nil })
	w.Start()
	w.Stop()
	// A second Stop must not block or panic.
	w.Stop()
}

func TestWatcherStartTwiceIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lua")
	os.WriteFile(path, []byte("-- v1"), 0644)

	var starts atomic.Int32
	w := New(path, func() error { return nil })
	w.Start()
	starts.Add(1)
	w.Start() // no-op, must not spawn a second goroutine/panic on double-start
	w.Stop()
}
