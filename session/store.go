package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnote/core/errors"
	"github.com/omnote/core/logging"
	"github.com/omnote/core/pkg/paths"
)

// Store reads and writes the persisted session document. Writes are
// atomic: a crash mid-write never leaves a half-written state file, and
// a document that fails structural validation loads as the default
// session instead of an error.
type Store struct {
	path       string
	legacyPath string
	logger     *logrus.Entry
}

// NewStore creates a store over the standard state file location.
func NewStore() *Store {
	return NewStoreAt(paths.StateFile(), paths.LegacyStateFile())
}

// NewStoreAt creates a store over explicit paths. legacyPath may be
// empty to disable migration.
func NewStoreAt(path, legacyPath string) *Store {
	return &Store{
		path:       path,
		legacyPath: legacyPath,
		logger:     logging.NewLogger("state-store"),
	}
}

// Load returns the last persisted session, or the default empty session
// when the file is absent, unreadable, or structurally invalid.
// Corruption is never fatal.
func (s *Store) Load() *State {
	s.migrateOnce()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("state file unreadable, starting fresh: %v", err)
		}
		return DefaultState()
	}

	if err := ValidateDocument(raw); err != nil {
		s.logger.Warnf("%v", errors.StateCorrupt(s.path, err))
		return DefaultState()
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warnf("%v", errors.StateCorrupt(s.path, err))
		return DefaultState()
	}
	if state.Tabs == nil {
		state.Tabs = []TabState{}
	}
	if state.ActiveTabIndex < 0 || state.ActiveTabIndex >= len(state.Tabs) {
		state.ActiveTabIndex = 0
	}
	return &state
}

// Save atomically persists the session: full document to a temp file in
// the same directory, flush, then rename over the target.
func (s *Store) Save(state *State) error {
	if state.Version == 0 {
		state.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.PersistenceFailure(s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.PersistenceFailure(s.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return errors.PersistenceFailure(s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.PersistenceFailure(s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.PersistenceFailure(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.PersistenceFailure(s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.PersistenceFailure(s.path, err)
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry after a rename, best effort.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

// migrateOnce copies the micropad predecessor's state file to the new
// location when the new file does not exist yet. Best effort, and the
// old file is left in place.
func (s *Store) migrateOnce() {
	if s.legacyPath == "" {
		return
	}
	if _, err := os.Stat(s.path); err == nil {
		return
	}
	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err == nil {
		s.logger.Infof("migrated legacy session state from %s", s.legacyPath)
	}
}

// Saver serializes session writes through a single goroutine. Mutation
// requests coalesce to "write the latest state", so concurrent save
// requests never race and bursts produce one write. Failed writes are
// retried on the next request or periodic tick.
type Saver struct {
	store    *Store
	interval time.Duration
	requests chan *State
	logger   *logrus.Entry
}

// NewSaver creates a saver writing through store, with a periodic save
// every interval.
func NewSaver(store *Store, interval time.Duration) *Saver {
	return &Saver{
		store:    store,
		interval: interval,
		requests: make(chan *State, 1),
		logger:   logging.NewLogger("state-saver"),
	}
}

// Request queues a snapshot for persistence. Never blocks: a pending
// unsaved snapshot is replaced by the newer one.
func (sv *Saver) Request(state *State) {
	for {
		select {
		case sv.requests <- state:
			return
		default:
			select {
			case <-sv.requests:
			default:
			}
		}
	}
}

// Run consumes requests until the context is cancelled, then performs a
// final write of any pending snapshot.
func (sv *Saver) Run(ctx context.Context) {
	ticker := time.NewTicker(sv.interval)
	defer ticker.Stop()

	var pending *State
	save := func() {
		if pending == nil {
			return
		}
		if err := sv.store.Save(pending); err != nil {
			// Keep pending so the next tick retries
			sv.logger.Warnf("session save failed, will retry: %v", err)
			return
		}
		pending = nil
	}

	for {
		select {
		case state := <-sv.requests:
			pending = state
			save()
		case <-ticker.C:
			save()
		case <-ctx.Done():
			select {
			case state := <-sv.requests:
				pending = state
			default:
			}
			save()
			return
		}
	}
}
