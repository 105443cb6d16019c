package theme

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnote/core/logging"
)

// Dispatch marshals a function onto the UI's single-threaded execution
// context. The GUI layer supplies its main-loop injector; tests supply
// a synchronous call.
type Dispatch func(func())

// SynchronizerOptions configures a Synchronizer.
type SynchronizerOptions struct {
	Resolver *Resolver
	// Registry produces a fresh source snapshot before each resolution.
	// Defaults to NewRegistry with default options.
	Registry func() *Registry
	// Dispatch delivers applied specs to subscribers. Required.
	Dispatch Dispatch
	// Debounce is the watcher coalescing window.
	Debounce time.Duration
	// PollInterval is the degraded-mode scan interval.
	PollInterval time.Duration
	// NoWatch disables live source watching entirely.
	NoWatch bool
}

// Synchronizer owns the current theme Spec and the watch lifecycle.
// Subscribers are notified on the dispatch context whenever resolution
// produces a spec that differs by value from the current one.
type Synchronizer struct {
	resolver     *Resolver
	registry     func() *Registry
	dispatch     Dispatch
	debounce     time.Duration
	pollInterval time.Duration
	noWatch      bool
	logger       *logrus.Entry

	mu          sync.Mutex
	current     Spec
	subscribers []func(Spec)
	watcher     *SourceWatcher
	watchPaths  []string
	cancelWatch context.CancelFunc
	resolving   bool
	pending     bool
	stopped     bool
}

// NewSynchronizer creates a synchronizer. Call Start to resolve the
// initial spec and begin watching.
func NewSynchronizer(opts SynchronizerOptions) *Synchronizer {
	if opts.Registry == nil {
		opts.Registry = func() *Registry { return NewRegistry(RegistryOptions{}) }
	}
	if opts.Debounce == 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Second
	}
	return &Synchronizer{
		resolver:     opts.Resolver,
		registry:     opts.Registry,
		dispatch:     opts.Dispatch,
		debounce:     opts.Debounce,
		pollInterval: opts.PollInterval,
		noWatch:      opts.NoWatch,
		logger:       logging.NewLogger("theme-sync"),
	}
}

// Subscribe registers a callback for applied specs. The callback runs
// on the dispatch context. Subscribing after Start immediately delivers
// the current spec.
func (s *Synchronizer) Subscribe(fn func(Spec)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	started := s.current != Spec{}
	current := s.current
	s.mu.Unlock()

	if started {
		s.dispatch(func() { fn(current) })
	}
}

// Current returns the spec most recently applied.
func (s *Synchronizer) Current() Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Start resolves once, publishes the initial spec, and begins watching
// unless watching is disabled or the mode is forced-system.
func (s *Synchronizer) Start() {
	reg := s.registry()
	spec := s.resolver.Resolve(reg)

	s.mu.Lock()
	s.current = spec
	subs := append([]func(Spec){}, s.subscribers...)
	s.mu.Unlock()

	s.dispatch(func() {
		for _, fn := range subs {
			fn(spec)
		}
	})

	if s.shouldWatch() {
		s.startWatching(reg.WatchPaths())
	}
}

func (s *Synchronizer) shouldWatch() bool {
	return !s.noWatch && !s.resolver.forcedSystemRequested()
}

// SetMode switches between live and forced-system modes. Switching to
// forced-system stops watching; switching back restarts it. Either way
// an immediate re-resolution is forced.
func (s *Synchronizer) SetMode(forcedSystem bool) {
	s.resolver.SetForcedSystem(forcedSystem)

	if forcedSystem {
		s.stopWatching()
	} else if s.shouldWatch() {
		s.mu.Lock()
		watching := s.watcher != nil
		s.mu.Unlock()
		if !watching {
			s.startWatching(s.registry().WatchPaths())
		}
	}

	s.scheduleResolve()
}

// Stop cancels watching and all pending timers. The synchronizer must
// not be restarted afterwards.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.stopWatching()
}

// startWatching builds a watcher over the given paths and runs it on a
// background goroutine. Watch construction failure degrades to polling
// inside the watcher itself.
func (s *Synchronizer) startWatching(paths []string) {
	watcher, err := NewSourceWatcher(paths, s.debounce, s.pollInterval, s.scheduleResolve)
	if err != nil {
		s.logger.Warnf("live theme sync degraded: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		watcher.Close()
		return
	}
	s.watcher = watcher
	s.watchPaths = paths
	s.cancelWatch = cancel
	s.mu.Unlock()

	go watcher.Start(ctx)
}

func (s *Synchronizer) stopWatching() {
	s.mu.Lock()
	watcher := s.watcher
	cancel := s.cancelWatch
	s.watcher = nil
	s.watchPaths = nil
	s.cancelWatch = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}
}

// scheduleResolve triggers a background resolution, guaranteeing
// at-most-one in flight. An event arriving mid-resolution schedules
// exactly one follow-up, never an unbounded queue.
func (s *Synchronizer) scheduleResolve() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.resolving {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.resolving = true
	s.mu.Unlock()

	go s.resolveLoop()
}

func (s *Synchronizer) resolveLoop() {
	for {
		reg := s.registry()
		spec := s.resolver.Resolve(reg)
		s.dispatch(func() { s.apply(spec) })
		s.refreshWatchPaths(reg)

		s.mu.Lock()
		if !s.pending || s.stopped {
			s.resolving = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()
	}
}

// apply runs on the dispatch context. Publishes only on value change;
// identical re-resolutions are discarded silently.
func (s *Synchronizer) apply(spec Spec) {
	s.mu.Lock()
	if s.stopped || spec.Equal(s.current) {
		s.mu.Unlock()
		return
	}
	s.current = spec
	subs := append([]func(Spec){}, s.subscribers...)
	s.mu.Unlock()

	s.logger.Infof("theme changed: source=%s mode=%s bg=%s fg=%s", spec.SourceID, spec.Mode, spec.Background, spec.Foreground)
	for _, fn := range subs {
		fn(spec)
	}
}

// refreshWatchPaths rebuilds the watcher when resolution changed the
// candidate path set, e.g. after an Omarchy theme switch points the
// current-theme symlink at a different directory.
func (s *Synchronizer) refreshWatchPaths(reg *Registry) {
	s.mu.Lock()
	watching := s.watcher != nil
	prev := s.watchPaths
	s.mu.Unlock()

	if !watching || !s.shouldWatch() {
		return
	}
	next := reg.WatchPaths()
	if pathsEqual(prev, next) {
		return
	}
	s.logger.Debugf("watch path set changed (%d -> %d paths), rebuilding watcher", len(prev), len(next))
	s.stopWatching()
	s.startWatching(next)
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
