// Package session persists the editor's session across restarts: open
// tabs, cursor and scroll positions, window geometry, and the
// per-tab autosave cache that makes an unclean termination recoverable.
package session

import "time"

// CurrentVersion is the session document format version.
const CurrentVersion = 1

// Geometry is the window size and position.
type Geometry struct {
	Width     int  `json:"width" jsonschema:"minimum=1"`
	Height    int  `json:"height" jsonschema:"minimum=1"`
	Maximized bool `json:"maximized"`
	X         *int `json:"x,omitempty"`
	Y         *int `json:"y,omitempty"`
}

// DefaultGeometry returns the geometry used for a fresh session.
func DefaultGeometry() Geometry {
	return Geometry{Width: 800, Height: 600}
}

// TabState describes one open tab. Created when a tab opens, mutated on
// edit/cursor-move/save, removed when the tab closes. Dirty is cleared
// only by an explicit save to FilePath.
type TabState struct {
	TabID        string  `json:"tab_id" jsonschema:"minLength=1"`
	FilePath     string  `json:"file_path,omitempty"`
	CursorOffset int     `json:"cursor_offset"`
	ScrollOffset float64 `json:"scroll_offset"`
	Dirty        bool    `json:"dirty"`
	AutosaveID   string  `json:"autosave_id,omitempty"`
}

// State is the persisted session document. Tab order is display order
// and must survive restarts. Unknown fields from future versions are
// ignored on load.
type State struct {
	Version        int        `json:"version"`
	Tabs           []TabState `json:"tabs"`
	ActiveTabIndex int        `json:"active_tab_index"`
	WindowGeometry Geometry   `json:"window_geometry"`
	ThemeMode      string     `json:"theme_mode,omitempty"`
}

// DefaultState returns the empty session used on first run and after a
// corrupt document is discarded.
func DefaultState() *State {
	return &State{
		Version:        CurrentVersion,
		Tabs:           []TabState{},
		WindowGeometry: DefaultGeometry(),
	}
}

// Clean reports whether the session ended with no outstanding unsaved
// edits.
func (s *State) Clean() bool {
	for _, tab := range s.Tabs {
		if tab.Dirty {
			return false
		}
	}
	return true
}

// Tab returns the tab with the given ID, or nil.
func (s *State) Tab(tabID string) *TabState {
	for i := range s.Tabs {
		if s.Tabs[i].TabID == tabID {
			return &s.Tabs[i]
		}
	}
	return nil
}

// AutosaveRecord describes the cached content snapshot of one unsaved
// tab. Superseded in place by each autosave write; timestamps are
// monotonically non-decreasing per tab.
type AutosaveRecord struct {
	TabID       string    `json:"tab_id"`
	Timestamp   time.Time `json:"timestamp"`
	ContentHash string    `json:"content_hash"`
	BlobPath    string    `json:"blob_path"`
}
