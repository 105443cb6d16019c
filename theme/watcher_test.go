package theme

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnote/core/errors"
)

func waitForCount(t *testing.T, counter *int32, want int32, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(counter) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d notifications, got %d", want, atomic.LoadInt32(counter))
}

func TestWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kitty.conf")
	require.NoError(t, os.WriteFile(file, []byte("background #000000\n"), 0644))

	var fired int32
	w, err := NewSourceWatcher([]string{dir, file}, 150*time.Millisecond, time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// A burst of rapid writes, all inside one debounce window
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("background #111111\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForCount(t, &fired, 1, 2*time.Second)

	// The burst must collapse into exactly one notification
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestWatcherSeparateBurstsFireSeparately(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "foot.ini")
	require.NoError(t, os.WriteFile(file, []byte("[colors]\n"), 0644))

	var fired int32
	w, err := NewSourceWatcher([]string{file}, 50*time.Millisecond, time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.WriteFile(file, []byte("[colors]\nbackground=111111\n"), 0644))
	waitForCount(t, &fired, 1, 2*time.Second)

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("[colors]\nbackground=222222\n"), 0644))
	waitForCount(t, &fired, 2, 2*time.Second)
}

func TestWatcherDegradesToPolling(t *testing.T) {
	w, err := NewSourceWatcher([]string{"/nonexistent/path/one", "/nonexistent/path/two"}, 50*time.Millisecond, time.Second, func() {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeWatchFailure))
	require.NotNil(t, w)
	assert.True(t, w.Polling())
	w.Close()
}

func TestWatcherPollLoopDetectsMtimeChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "alacritty.toml")
	require.NoError(t, os.WriteFile(file, []byte("a = 1\n"), 0644))

	var fired int32
	w := &SourceWatcher{
		polling:   true,
		pollEvery: 30 * time.Millisecond,
		paths:     []string{file},
		notify:    func() { atomic.AddInt32(&fired, 1) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(file, past, past))

	waitForCount(t, &fired, 1, 2*time.Second)
}

func TestWatcherCloseCancelsPendingTimer(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kitty.conf")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0644))

	var fired int32
	w, err := NewSourceWatcher([]string{file}, 200*time.Millisecond, time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.WriteFile(file, []byte("y\n"), 0644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Close())

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
