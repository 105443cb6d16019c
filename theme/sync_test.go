package theme

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// specRecorder collects applied specs thread-safely.
type specRecorder struct {
	mu    sync.Mutex
	specs []Spec
}

func (r *specRecorder) record(s Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, s)
}

func (r *specRecorder) all() []Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Spec{}, r.specs...)
}

func (r *specRecorder) waitLen(t *testing.T, n int, timeout time.Duration) []Spec {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got := r.all(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d applied specs, got %d", n, len(r.all()))
	return nil
}

func newTestSynchronizer(home string, env map[string]string, noWatch bool) (*Synchronizer, *specRecorder) {
	getenv := testGetenv(env)
	resolver := NewResolver(false)
	resolver.Getenv = getenv

	rec := &specRecorder{}
	syn := NewSynchronizer(SynchronizerOptions{
		Resolver:     resolver,
		Registry:     func() *Registry { return NewRegistry(RegistryOptions{Home: home, Getenv: getenv}) },
		Dispatch:     func(fn func()) { fn() },
		Debounce:     50 * time.Millisecond,
		PollInterval: time.Second,
		NoWatch:      noWatch,
	})
	syn.Subscribe(rec.record)
	return syn, rec
}

func TestSynchronizerStartPublishesInitialSpec(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".config", "kitty", "kitty.conf", "background #1d2021\nforeground #d5c4a1\n")

	s, rec := newTestSynchronizer(home, nil, true)
	s.Start()
	defer s.Stop()

	specs := rec.all()
	require.Len(t, specs, 1)
	assert.Equal(t, "kitty", specs[0].SourceID)
	assert.Equal(t, "#1d2021", specs[0].Background)
	assert.Equal(t, specs[0], s.Current())
}

func TestSynchronizerLateSubscribeDeliversCurrent(t *testing.T) {
	home := t.TempDir()
	s, _ := newTestSynchronizer(home, nil, true)
	s.Start()
	defer s.Stop()

	late := &specRecorder{}
	s.Subscribe(late.record)

	specs := late.all()
	require.Len(t, specs, 1)
	assert.Equal(t, "fallback", specs[0].SourceID)
}

func TestSynchronizerIdenticalResolutionNotPublished(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".config", "foot", "foot.ini", "[colors]\nbackground=242424\nforeground=ffffff\n")

	s, rec := newTestSynchronizer(home, nil, true)
	s.Start()
	defer s.Stop()

	// Re-resolving unchanged sources must not re-notify subscribers
	s.scheduleResolve()
	time.Sleep(200 * time.Millisecond)

	assert.Len(t, rec.all(), 1)
}

func TestSynchronizerFileChangeTriggersUpdate(t *testing.T) {
	home := t.TempDir()
	conf := writeHomeFile(t, home, ".config", "kitty", "kitty.conf", "background #111111\nforeground #eeeeee\n")

	s, rec := newTestSynchronizer(home, nil, false)
	s.Start()
	defer s.Stop()
	rec.waitLen(t, 1, 2*time.Second)

	require.NoError(t, os.WriteFile(conf, []byte("background #222222\nforeground #eeeeee\n"), 0644))

	specs := rec.waitLen(t, 2, 5*time.Second)
	assert.Equal(t, "#222222", specs[len(specs)-1].Background)
}

func TestSynchronizerSetModeForcedSystem(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".config", "kitty", "kitty.conf", "background #111111\nforeground #eeeeee\n")

	s, rec := newTestSynchronizer(home, nil, true)
	s.Start()
	defer s.Stop()

	s.SetMode(true)
	specs := rec.waitLen(t, 2, 2*time.Second)
	assert.Equal(t, ModeForcedSystem, specs[len(specs)-1].Mode)
	assert.Equal(t, "#1e1e1e", specs[len(specs)-1].Background)

	s.SetMode(false)
	specs = rec.waitLen(t, 3, 2*time.Second)
	assert.Equal(t, ModeLive, specs[len(specs)-1].Mode)
	assert.Equal(t, "#111111", specs[len(specs)-1].Background)
}

func TestSynchronizerSetModeDuringResolution(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".config", "kitty", "kitty.conf", "background #111111\nforeground #eeeeee\n")

	getenv := testGetenv(nil)
	resolver := NewResolver(false)
	resolver.Getenv = getenv

	rec := &specRecorder{}
	syn := NewSynchronizer(SynchronizerOptions{
		Resolver: resolver,
		Registry: func() *Registry {
			// Stretch the resolution window so mode switches land
			// mid-flight
			time.Sleep(2 * time.Millisecond)
			return NewRegistry(RegistryOptions{Home: home, Getenv: getenv})
		},
		Dispatch: func(fn func()) { fn() },
		NoWatch:  true,
	})
	syn.Subscribe(rec.record)
	syn.Start()
	defer syn.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 40; i++ {
			syn.SetMode(i%2 == 0)
		}
		close(done)
	}()
	for i := 0; i < 40; i++ {
		syn.scheduleResolve()
	}
	<-done

	// After the churn the synchronizer still settles on whichever mode
	// was requested last
	syn.SetMode(true)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if syn.Current().Mode == ModeForcedSystem {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, ModeForcedSystem, syn.Current().Mode)

	syn.SetMode(false)
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if syn.Current().Mode == ModeLive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, ModeLive, syn.Current().Mode)
}

func TestSynchronizerStopSilencesSubscribers(t *testing.T) {
	home := t.TempDir()
	conf := writeHomeFile(t, home, ".config", "kitty", "kitty.conf", "background #111111\nforeground #eeeeee\n")

	s, rec := newTestSynchronizer(home, nil, false)
	s.Start()
	rec.waitLen(t, 1, 2*time.Second)
	s.Stop()

	require.NoError(t, os.WriteFile(conf, []byte("background #333333\nforeground #eeeeee\n"), 0644))
	time.Sleep(300 * time.Millisecond)

	assert.Len(t, rec.all(), 1)
}

func TestSynchronizerOmarchySwitchRebuildsWatchSet(t *testing.T) {
	home := t.TempDir()
	themesDir := filepath.Join(home, ".config", "omarchy", "themes")
	themeA := filepath.Join(themesDir, "alpha")
	themeB := filepath.Join(themesDir, "beta")
	require.NoError(t, os.MkdirAll(themeA, 0755))
	require.NoError(t, os.MkdirAll(themeB, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(themeA, "kitty.conf"), []byte("background #0000aa\nforeground #ffffff\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(themeB, "kitty.conf"), []byte("background #00aa00\nforeground #ffffff\n"), 0644))

	marker := filepath.Join(home, ".config", "omarchy", "current-theme")
	require.NoError(t, os.WriteFile(marker, []byte("alpha\n"), 0644))

	s, rec := newTestSynchronizer(home, nil, false)
	s.Start()
	defer s.Stop()

	specs := rec.waitLen(t, 1, 2*time.Second)
	assert.Equal(t, "#0000aa", specs[0].Background)

	// Switching the active theme retargets the watch set to theme beta
	require.NoError(t, os.WriteFile(marker, []byte("beta\n"), 0644))
	specs = rec.waitLen(t, 2, 5*time.Second)
	assert.Equal(t, "#00aa00", specs[len(specs)-1].Background)

	// Edits inside the new theme directory are now observed
	require.NoError(t, os.WriteFile(filepath.Join(themeB, "kitty.conf"), []byte("background #00bb00\nforeground #ffffff\n"), 0644))
	specs = rec.waitLen(t, 3, 5*time.Second)
	assert.Equal(t, "#00bb00", specs[len(specs)-1].Background)
}
