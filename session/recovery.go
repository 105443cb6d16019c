package session

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnote/core/logging"
)

// RecoveredTab is an unsaved tab reconstructed from autosave evidence
// rather than from the file on disk. The caller decides whether to
// accept it; committing the content to disk still requires an explicit
// save.
type RecoveredTab struct {
	Tab     TabState
	Content string
	SavedAt time.Time
}

// RecoveryCoordinator reconciles the last persisted session against the
// autosave cache at startup.
type RecoveryCoordinator struct {
	autosaver *Autosaver
	retention time.Duration
	logger    *logrus.Entry
	now       func() time.Time
}

// NewRecoveryCoordinator creates a coordinator. Orphaned records older
// than retention are purged during reconciliation.
func NewRecoveryCoordinator(autosaver *Autosaver, retention time.Duration) *RecoveryCoordinator {
	return &RecoveryCoordinator{
		autosaver: autosaver,
		retention: retention,
		logger:    logging.NewLogger("recovery"),
		now:       time.Now,
	}
}

// Reconcile inspects every autosave record against the loaded session
// and returns the tabs that should be offered for recovery, in autosave
// order. Side effects: stale records for cleanly-saved tabs and expired
// orphans are purged.
func (c *RecoveryCoordinator) Reconcile(state *State) []RecoveredTab {
	var out []RecoveredTab

	records := c.autosaver.Records()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	for _, record := range records {
		tab := state.Tab(record.TabID)

		switch {
		case tab != nil && !tab.Dirty:
			// Session says this tab was saved cleanly; the record is a
			// leftover from a crash between save and cache cleanup
			c.logger.Debugf("purging stale autosave for cleanly-saved tab %s", record.TabID)
			c.autosaver.Discard(record.TabID)

		case tab == nil && c.now().Sub(record.Timestamp) > c.retention:
			c.logger.Infof("purging expired autosave for tab %s (age %v)", record.TabID, c.now().Sub(record.Timestamp).Round(time.Second))
			c.autosaver.Discard(record.TabID)

		default:
			content, err := c.autosaver.Content(record)
			if err != nil {
				c.logger.Warnf("autosave blob for tab %s unreadable, discarding: %v", record.TabID, err)
				c.autosaver.Discard(record.TabID)
				continue
			}

			recovered := TabState{
				TabID:      record.TabID,
				Dirty:      true,
				AutosaveID: record.TabID,
			}
			if tab != nil {
				recovered.FilePath = tab.FilePath
				recovered.CursorOffset = tab.CursorOffset
				recovered.ScrollOffset = tab.ScrollOffset
			}
			c.logger.Infof("offering recovery for tab %s (snapshot from %s)", record.TabID, record.Timestamp.Format(time.RFC3339))
			out = append(out, RecoveredTab{
				Tab:     recovered,
				Content: content,
				SavedAt: record.Timestamp,
			})
		}
	}

	return out
}

// Decline discards the autosave evidence for a recovery offer the user
// rejected.
func (c *RecoveryCoordinator) Decline(tabID string) {
	c.autosaver.Discard(tabID)
}
