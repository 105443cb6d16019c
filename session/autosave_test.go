package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mutableContent is a thread-safe content provider for tests.
type mutableContent struct {
	mu   sync.Mutex
	text string
}

func (m *mutableContent) set(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

func (m *mutableContent) get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func waitForRecord(t *testing.T, a *Autosaver, tabID string, timeout time.Duration) AutosaveRecord {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, rec := range a.Records() {
			if rec.TabID == tabID {
				return rec
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no autosave record for tab %s", tabID)
	return AutosaveRecord{}
}

func TestAutosaveAfterIdleWindow(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 50*time.Millisecond, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "hello world"}
	a.Track("tab-1", content.get)
	a.NoteEdit("tab-1")

	rec := waitForRecord(t, a, "tab-1", 2*time.Second)

	data, err := os.ReadFile(rec.BlobPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestAutosaveSnapshotsLatestContent(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 80*time.Millisecond, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "draft one"}
	a.Track("tab-1", content.get)
	a.NoteEdit("tab-1")

	// Content changes after the edit but before the write fires; the
	// blob must hold what the content function returns at write time
	content.set("draft two")

	rec := waitForRecord(t, a, "tab-1", 2*time.Second)
	data, err := os.ReadFile(rec.BlobPath)
	require.NoError(t, err)
	assert.Equal(t, "draft two", string(data))
}

func TestAutosaveIdleTimerResetsOnEdit(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 150*time.Millisecond, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "typing"}
	a.Track("tab-1", content.get)

	// Keep editing faster than the idle window; no snapshot yet
	for i := 0; i < 5; i++ {
		a.NoteEdit("tab-1")
		time.Sleep(30 * time.Millisecond)
	}
	assert.Empty(t, a.Records())

	waitForRecord(t, a, "tab-1", 2*time.Second)
}

func TestAutosaveMaxLatencyCapsLongBursts(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, 100*time.Millisecond)
	defer a.Close()

	content := &mutableContent{text: "burst"}
	a.Track("tab-1", content.get)
	a.NoteEdit("tab-1")

	// The idle timer will never fire; the max-latency cap must
	waitForRecord(t, a, "tab-1", 2*time.Second)
}

func TestAutosaveSkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "same"}
	a.Track("tab-1", content.get)
	a.Flush("tab-1")

	first := waitForRecord(t, a, "tab-1", time.Second)

	time.Sleep(20 * time.Millisecond)
	a.Flush("tab-1")
	second := waitForRecord(t, a, "tab-1", time.Second)

	// Identical content by hash: the record is untouched
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	content.set("different")
	a.Flush("tab-1")
	third := waitForRecord(t, a, "tab-1", time.Second)
	assert.NotEqual(t, first.ContentHash, third.ContentHash)
	assert.False(t, third.Timestamp.Before(first.Timestamp))
}

func TestAutosaveCloseTabDirtyKeepsRecord(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "unsaved work"}
	a.Track("tab-1", content.get)
	a.CloseTab("tab-1", true)

	rec := waitForRecord(t, a, "tab-1", time.Second)
	data, err := os.ReadFile(rec.BlobPath)
	require.NoError(t, err)
	assert.Equal(t, "unsaved work", string(data))
}

func TestAutosaveCloseTabCleanDiscards(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()

	content := &mutableContent{text: "saved already"}
	a.Track("tab-1", content.get)
	a.Flush("tab-1")
	rec := waitForRecord(t, a, "tab-1", time.Second)

	a.CloseTab("tab-1", false)

	assert.Empty(t, a.Records())
	_, err := os.Stat(rec.BlobPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAutosaveIndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	a := NewAutosaver(dir, time.Hour, time.Hour)
	content := &mutableContent{text: "persisted"}
	a.Track("tab-1", content.get)
	a.Flush("tab-1")
	waitForRecord(t, a, "tab-1", time.Second)
	a.Close()

	b := NewAutosaver(dir, time.Hour, time.Hour)
	defer b.Close()
	rec := waitForRecord(t, b, "tab-1", time.Second)

	text, err := b.Content(rec)
	require.NoError(t, err)
	assert.Equal(t, "persisted", text)
}

func TestAutosaveIndexDropsVanishedBlobs(t *testing.T) {
	dir := t.TempDir()

	a := NewAutosaver(dir, time.Hour, time.Hour)
	content := &mutableContent{text: "gone soon"}
	a.Track("tab-1", content.get)
	a.Flush("tab-1")
	rec := waitForRecord(t, a, "tab-1", time.Second)
	a.Close()

	require.NoError(t, os.Remove(rec.BlobPath))

	b := NewAutosaver(dir, time.Hour, time.Hour)
	defer b.Close()
	assert.Empty(t, b.Records())
}

func TestAutosaveMalformedIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0644))

	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()
	assert.Empty(t, a.Records())
}

func TestAutosaveBlobPathsDistinctAfterSanitization(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()

	// These IDs collapse to the same sanitized name
	p1 := a.blobPath("tab/1")
	p2 := a.blobPath("tab:1")
	assert.NotEqual(t, p1, p2)

	// A fully non-ASCII ID still yields a usable filename
	p3 := a.blobPath("メモ")
	assert.True(t, filepath.IsAbs(p3) || filepath.Dir(p3) == dir)
	assert.NotEmpty(t, filepath.Base(p3))
}

func TestAutosaveCleanCloseBeatsInFlightSnapshot(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, time.Hour, time.Hour)
	defer a.Close()

	// A fired timer's snapshot racing a clean close must never leave a
	// record behind: whichever runs first, the close's discard wins
	for i := 0; i < 50; i++ {
		tabID := fmt.Sprintf("tab-%d", i)
		a.Track(tabID, func() string { return "ephemeral content" })

		done := make(chan struct{})
		go func() {
			a.snapshot(tabID)
			close(done)
		}()
		a.CloseTab(tabID, false)
		<-done

		for _, rec := range a.Records() {
			if rec.TabID == tabID {
				t.Fatalf("clean close left an autosave record for %s", tabID)
			}
		}
	}
}

func TestAutosaveCloseCancelsPendingWrites(t *testing.T) {
	dir := t.TempDir()
	a := NewAutosaver(dir, 50*time.Millisecond, time.Hour)

	content := &mutableContent{text: "never written"}
	a.Track("tab-1", content.get)
	a.NoteEdit("tab-1")
	a.Close()

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, a.Records())
}
