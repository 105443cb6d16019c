// Package paths provides XDG-compliant path resolution for omnote.
//
// Resolution order:
// 1. OMNOTE_HOME (portable root) → $OMNOTE_HOME/{config,cache}
// 2. XDG env vars → $XDG_*_HOME/omnote
// 3. Platform defaults → ~/.config/omnote, ~/.cache/omnote
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if omnoteHome := os.Getenv("OMNOTE_HOME"); omnoteHome != "" {
		return filepath.Join(omnoteHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if omnoteHome := os.Getenv("OMNOTE_HOME"); omnoteHome != "" {
		return filepath.Join(omnoteHome, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the omnote configuration directory.
// Used for omnote.yml and the persisted session state.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "omnote")
}

// LegacyConfigDir returns the configuration directory of the micropad
// predecessor. Read-only: consulted once at startup to migrate state.json.
func LegacyConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "micropad")
}

// CacheDir returns the omnote cache directory.
// Used for the autosave cache and the debug log.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "omnote")
}

// ConfigFile returns the path to omnote.yml.
func ConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "omnote.yml")
}

// StateFile returns the path to the persisted session document.
func StateFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.json")
}

// LegacyStateFile returns the micropad session document path.
func LegacyStateFile() string {
	dir := LegacyConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.json")
}

// AutosaveDir returns the directory holding per-tab autosave blobs
// and the autosave index.
func AutosaveDir() string {
	cache := CacheDir()
	if cache == "" {
		return ""
	}
	return filepath.Join(cache, "autosave")
}

// DebugLogFile returns the append-only diagnostic log path.
func DebugLogFile() string {
	cache := CacheDir()
	if cache == "" {
		return ""
	}
	return filepath.Join(cache, "debug.log")
}

// EnsureDirs creates all omnote directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		CacheDir(),
		AutosaveDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
