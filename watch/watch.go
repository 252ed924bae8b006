// Package watch polls a script file for changes and coalesces reload
// storms so a flurry of saves from an editor collapses into one reload.
package watch

import (
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const pollInterval = 200 * time.Millisecond

// Watcher polls path's mtime on a ticker and invokes Reload on change,
// coalescing concurrent/overlapping reload requests through a
// singleflight group so a burst of changes triggers at most one reload at
// a time.
type Watcher struct {
	path   string
	reload func() error

	group   singleflight.Group
	stop    chan struct{}
	done    chan struct{}
	running atomic.Bool
}

// New returns a Watcher over path that calls reload on every detected
// change. reload is not started until Start is called.
func New(path string, reload func() error) *Watcher {
	return &Watcher{path: path, reload: reload}
}

// Start begins polling in a background goroutine. No-op if already
// running.
func (w *Watcher) Start() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.run()
}

// Stop signals the polling goroutine to exit and blocks until it has.
// No-op if not running.
func (w *Watcher) Stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	close(w.stop)
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := w.modTime()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			now := w.modTime()
			if !now.Equal(last) {
				last = now
				w.triggerReload()
			}
		}
	}
}

func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// triggerReload coalesces overlapping reload requests: if one is already
// in flight for this watcher's key, callers that arrive while it runs
// share its result instead of starting a second one.
func (w *Watcher) triggerReload() {
	w.group.Do(w.path, func() (interface{}, error) {
		return nil, w.reload()
	})
}
