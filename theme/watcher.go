package theme

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/omnote/core/errors"
	"github.com/omnote/core/logging"
)

// SourceWatcher turns raw filesystem events on theme source paths into
// a single debounced re-resolve signal. Terminal emulators rewrite
// their configs atomically (temp file + rename), producing bursts of
// events; everything inside the debounce window collapses into one
// notification, across paths as well as per path.
//
// The watcher only produces notifications. It never touches theme
// state; the synchronizer applies results on the UI context.
type SourceWatcher struct {
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	pollEvery time.Duration
	notify    func()
	logger    *logrus.Entry

	mu      sync.Mutex
	timer   *time.Timer
	paths   []string
	polling bool
	closed  bool
}

// NewSourceWatcher registers watches on the given paths. When the
// underlying watch cannot be established (e.g. inotify limits are
// exhausted) the returned watcher degrades to periodic mtime polling
// and the error reports why; the watcher is usable either way.
func NewSourceWatcher(watchPaths []string, debounce, pollEvery time.Duration, notify func()) (*SourceWatcher, error) {
	logger := logging.NewLogger("source-watcher")

	sw := &SourceWatcher{
		debounce:  debounce,
		pollEvery: pollEvery,
		notify:    notify,
		paths:     watchPaths,
		logger:    logger,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		sw.polling = true
		werr := errors.WatchFailure(err)
		logger.Warnf("degrading to %v polling: %v", pollEvery, werr)
		return sw, werr
	}

	added := 0
	var lastErr error
	for _, p := range watchPaths {
		if err := watcher.Add(p); err != nil {
			logger.Debugf("cannot watch %s: %v", p, err)
			lastErr = err
			continue
		}
		added++
	}
	if added == 0 && len(watchPaths) > 0 {
		watcher.Close()
		sw.polling = true
		werr := errors.WatchFailure(lastErr)
		logger.Warnf("no watchable paths, degrading to %v polling", pollEvery)
		return sw, werr
	}

	sw.watcher = watcher
	logger.Debugf("watching %d of %d candidate paths", added, len(watchPaths))
	return sw, nil
}

// Polling reports whether the watcher degraded to mtime polling.
func (w *SourceWatcher) Polling() bool {
	return w.polling
}

// Start consumes events until the context is cancelled. Blocks; run it
// on the background watching goroutine.
func (w *SourceWatcher) Start(ctx context.Context) {
	if w.polling {
		w.pollLoop(ctx)
		return
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
				w.scheduleNotify()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("watcher error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

// scheduleNotify arms the debounce timer, extending it if already
// armed. The notification fires once, a debounce window after the last
// event in the burst.
func (w *SourceWatcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *SourceWatcher) fire() {
	w.mu.Lock()
	w.timer = nil
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	w.notify()
}

// pollLoop is the degraded mode: scan candidate path mtimes on a ticker
// and notify when any differ from the last scan.
func (w *SourceWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	last := w.snapshotMtimes()
	for {
		select {
		case <-ticker.C:
			current := w.snapshotMtimes()
			if !mtimesEqual(last, current) {
				last = current
				w.notify()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (w *SourceWatcher) snapshotMtimes() map[string]time.Time {
	out := make(map[string]time.Time, len(w.paths))
	for _, p := range w.paths {
		if info, err := os.Stat(p); err == nil {
			out[p] = info.ModTime()
		}
	}
	return out
}

func mtimesEqual(a, b map[string]time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !b[k].Equal(v) {
			return false
		}
	}
	return true
}

// Close stops the watcher, cancelling any in-flight debounce timer.
func (w *SourceWatcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
