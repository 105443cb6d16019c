package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesDebugLog(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OMNOTE_HOME", home)
	Reset()
	t.Cleanup(Reset)

	logger := NewLogger("test-component")
	logger.Info("hello from the test")

	logPath := filepath.Join(home, "cache", "omnote", "debug.log")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[INFO]")
	assert.Contains(t, content, "[test-component]")
	assert.Contains(t, content, "hello from the test")
}

func TestNewLoggerSingletonPerComponent(t *testing.T) {
	t.Setenv("OMNOTE_HOME", t.TempDir())
	Reset()
	t.Cleanup(Reset)

	a := NewLogger("one")
	b := NewLogger("one")
	c := NewLogger("two")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestLevelFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OMNOTE_HOME", home)
	t.Setenv("OMNOTE_LOG_LEVEL", "debug")
	Reset()
	t.Cleanup(Reset)

	logger := NewLogger("leveled")
	logger.Debug("visible at debug level")

	data, err := os.ReadFile(filepath.Join(home, "cache", "omnote", "debug.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "visible at debug level"))
}
