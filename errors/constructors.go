package errors

import (
	"fmt"
)

// SourceUnavailable creates an error for a theme source that is missing
// or unreadable. Callers skip to the next-priority source.
func SourceUnavailable(sourceID, path string) *CoreError {
	return New(ErrCodeSourceUnavailable, fmt.Sprintf("theme source '%s' unavailable: %s", sourceID, path)).
		WithDetail("source", sourceID).
		WithDetail("path", path)
}

// SourceMalformed creates an error for a theme source whose contents
// could not be parsed into any usable color keys.
func SourceMalformed(sourceID string, err error) *CoreError {
	return Wrap(err, ErrCodeSourceMalformed, fmt.Sprintf("theme source '%s' yielded no usable colors", sourceID)).
		WithDetail("source", sourceID)
}

// StateCorrupt creates an error for a session document that failed
// structural validation. Never fatal: callers reset to the default session.
func StateCorrupt(path string, err error) *CoreError {
	return Wrap(err, ErrCodeStateCorrupt, fmt.Sprintf("session state at %s failed validation", path)).
		WithDetail("path", path)
}

// PersistenceFailure creates an error for a failed state or autosave write.
func PersistenceFailure(path string, err error) *CoreError {
	return Wrap(err, ErrCodePersistenceFailure, fmt.Sprintf("failed to persist %s", path)).
		WithDetail("path", path)
}

// WatchFailure creates an error for a filesystem watch that could not be
// established. Callers degrade to polling.
func WatchFailure(err error) *CoreError {
	return Wrap(err, ErrCodeWatchFailure, "filesystem watch could not be established")
}
