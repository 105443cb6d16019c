package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnote/core/errors"
	"github.com/omnote/core/logging"
	"github.com/omnote/core/util/sanitize"
)

// ContentFunc returns a tab's current in-memory content. Autosave
// always snapshots the latest content at write time, never a queued
// copy, so a stale pending write can never overwrite newer content.
type ContentFunc func() string

// Autosaver maintains one debounced snapshot writer per open tab. An
// edit schedules a write after an idle period; a max-latency timer
// guarantees long typing bursts are still captured periodically. Each
// write supersedes the tab's single AutosaveRecord; identical content
// (by hash) skips the write.
type Autosaver struct {
	dir        string
	idle       time.Duration
	maxLatency time.Duration
	logger     *logrus.Entry

	mu     sync.Mutex
	tabs   map[string]*trackedTab
	index  map[string]AutosaveRecord
	closed bool
}

type trackedTab struct {
	content   ContentFunc
	idleTimer *time.Timer
	maxTimer  *time.Timer
}

// NewAutosaver creates an autosaver over dir, loading any existing
// record index from a previous run.
func NewAutosaver(dir string, idle, maxLatency time.Duration) *Autosaver {
	a := &Autosaver{
		dir:        dir,
		idle:       idle,
		maxLatency: maxLatency,
		logger:     logging.NewLogger("autosave"),
		tabs:       make(map[string]*trackedTab),
		index:      make(map[string]AutosaveRecord),
	}
	a.loadIndex()
	return a
}

// Track registers a tab's content provider. Must be called before
// NoteEdit for that tab.
func (a *Autosaver) Track(tabID string, content ContentFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if existing, ok := a.tabs[tabID]; ok {
		existing.content = content
		return
	}
	a.tabs[tabID] = &trackedTab{content: content}
}

// NoteEdit schedules a snapshot after the idle window, arming the
// max-latency cap if it is not already running.
func (a *Autosaver) NoteEdit(tabID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	tab, ok := a.tabs[tabID]
	if !ok {
		return
	}

	if tab.idleTimer == nil {
		tab.idleTimer = time.AfterFunc(a.idle, func() { a.snapshot(tabID) })
	} else {
		tab.idleTimer.Reset(a.idle)
	}

	if tab.maxTimer == nil {
		tab.maxTimer = time.AfterFunc(a.maxLatency, func() { a.snapshot(tabID) })
	}
}

// Flush writes a tab's pending snapshot immediately.
func (a *Autosaver) Flush(tabID string) {
	a.snapshot(tabID)
}

// FlushAll writes every tracked tab's pending snapshot. Called on
// shutdown.
func (a *Autosaver) FlushAll() {
	a.mu.Lock()
	ids := make([]string, 0, len(a.tabs))
	for id, tab := range a.tabs {
		if tab.idleTimer != nil || tab.maxTimer != nil {
			ids = append(ids, id)
		}
	}
	a.mu.Unlock()

	for _, id := range ids {
		a.snapshot(id)
	}
}

// CloseTab stops tracking a tab. A clean close (saved content) deletes
// its record and blob; a dirty close flushes the latest content and
// intentionally leaves the record for recovery.
func (a *Autosaver) CloseTab(tabID string, dirty bool) {
	if dirty {
		a.snapshot(tabID)
	}

	a.mu.Lock()
	tab, ok := a.tabs[tabID]
	if ok {
		stopTimersLocked(tab)
		delete(a.tabs, tabID)
	}
	a.mu.Unlock()

	if !dirty {
		a.Discard(tabID)
	}
}

// Discard deletes a tab's autosave record and blob, if any.
func (a *Autosaver) Discard(tabID string) {
	a.mu.Lock()
	record, ok := a.index[tabID]
	if ok {
		delete(a.index, tabID)
	}
	a.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(record.BlobPath); err != nil && !os.IsNotExist(err) {
		a.logger.Debugf("cannot remove autosave blob %s: %v", record.BlobPath, err)
	}
	a.persistIndex()
}

// Records returns a copy of the current autosave index.
func (a *Autosaver) Records() []AutosaveRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AutosaveRecord, 0, len(a.index))
	for _, rec := range a.index {
		out = append(out, rec)
	}
	return out
}

// Content reads back the snapshotted content for a record.
func (a *Autosaver) Content(record AutosaveRecord) (string, error) {
	data, err := os.ReadFile(record.BlobPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close cancels every pending timer without writing. Used when the
// process is shutting down after FlushAll, and in tests.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for _, tab := range a.tabs {
		stopTimersLocked(tab)
	}
}

func stopTimersLocked(tab *trackedTab) {
	if tab.idleTimer != nil {
		tab.idleTimer.Stop()
		tab.idleTimer = nil
	}
	if tab.maxTimer != nil {
		tab.maxTimer.Stop()
		tab.maxTimer = nil
	}
}

// snapshot captures a tab's current content into its blob and record.
// Runs entirely under the mutex: a snapshot and a CloseTab for the same
// tab are strictly ordered, so a fired timer can never re-insert a
// record after a clean close discarded it.
func (a *Autosaver) snapshot(tabID string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	tab, ok := a.tabs[tabID]
	if !ok {
		a.mu.Unlock()
		return
	}
	stopTimersLocked(tab)
	content := tab.content()
	prev, hadPrev := a.index[tabID]

	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])
	if hadPrev && prev.ContentHash == hash {
		a.mu.Unlock()
		return
	}

	blobPath := a.blobPath(tabID)
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		a.mu.Unlock()
		a.logger.Warnf("%v", errors.PersistenceFailure(blobPath, err))
		return
	}
	if err := os.WriteFile(blobPath, []byte(content), 0600); err != nil {
		a.mu.Unlock()
		a.logger.Warnf("%v", errors.PersistenceFailure(blobPath, err))
		return
	}

	now := time.Now()
	if hadPrev && now.Before(prev.Timestamp) {
		// Timestamps are monotonically non-decreasing per tab even
		// across clock steps
		now = prev.Timestamp
	}

	a.index[tabID] = AutosaveRecord{
		TabID:       tabID,
		Timestamp:   now,
		ContentHash: hash,
		BlobPath:    blobPath,
	}
	a.mu.Unlock()

	a.persistIndex()
	a.logger.Debugf("autosaved tab %s (%d bytes)", tabID, len(content))
}

// blobPath derives a stable filename from the tab ID; a short hash
// suffix keeps distinct IDs distinct after sanitization.
func (a *Autosaver) blobPath(tabID string) string {
	sum := sha256.Sum256([]byte(tabID))
	short := hex.EncodeToString(sum[:4])
	name := sanitize.ForFilename(tabID)
	if name == "" {
		return filepath.Join(a.dir, fmt.Sprintf("tab-%s.txt", short))
	}
	return filepath.Join(a.dir, fmt.Sprintf("%s-%s.txt", name, short))
}

func (a *Autosaver) indexPath() string {
	return filepath.Join(a.dir, "index.json")
}

// loadIndex reads a previous run's record index. Lenient: an unreadable
// or malformed index simply starts empty, and records whose blob has
// vanished are dropped.
func (a *Autosaver) loadIndex() {
	data, err := os.ReadFile(a.indexPath())
	if err != nil {
		return
	}
	var records []AutosaveRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.logger.Warnf("autosave index malformed, starting empty: %v", err)
		return
	}
	for _, rec := range records {
		if _, err := os.Stat(rec.BlobPath); err != nil {
			continue
		}
		a.index[rec.TabID] = rec
	}
}

// persistIndex writes the record index atomically next to the blobs.
func (a *Autosaver) persistIndex() {
	a.mu.Lock()
	records := make([]AutosaveRecord, 0, len(a.index))
	for _, rec := range a.index {
		records = append(records, rec)
	}
	a.mu.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return
	}
	path := a.indexPath()
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		a.logger.Warnf("%v", errors.PersistenceFailure(path, err))
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		a.logger.Warnf("%v", errors.PersistenceFailure(path, err))
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		a.logger.Warnf("%v", errors.PersistenceFailure(path, err))
	}
}
