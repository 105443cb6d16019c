// Package config loads omnote.yml, the optional user configuration file.
//
// Every knob has a safe default: a missing or unreadable file yields the
// default configuration rather than an error. The timing values exist so
// that the debounce and autosave contracts are explicit and shrinkable in
// tests instead of hardcoded constants.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/omnote/core/pkg/paths"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Timings groups every timing contract of the core subsystem.
// Zero values are replaced by defaults in ApplyDefaults.
type Timings struct {
	// ThemeDebounce is the window during which repeated source file
	// events collapse into a single re-resolution.
	ThemeDebounce time.Duration `yaml:"theme_debounce"`

	// ThemePollInterval is the scan interval used when filesystem
	// watching is unavailable and the watcher degrades to polling.
	ThemePollInterval time.Duration `yaml:"theme_poll_interval"`

	// AutosaveIdle is the quiet period after an edit before the tab's
	// content is snapshotted.
	AutosaveIdle time.Duration `yaml:"autosave_idle"`

	// AutosaveMaxLatency caps how long a continuously-edited tab can go
	// without a snapshot.
	AutosaveMaxLatency time.Duration `yaml:"autosave_max_latency"`

	// StateSaveInterval is the periodic session persistence interval.
	StateSaveInterval time.Duration `yaml:"state_save_interval"`

	// AutosaveRetention is how long orphaned autosave records survive
	// before startup garbage collection purges them.
	AutosaveRetention time.Duration `yaml:"autosave_retention"`
}

// ThemeConfig holds theme-related defaults that CLI flags and
// environment variables can override.
type ThemeConfig struct {
	// Mode is "live" (default) or "system".
	Mode string `yaml:"mode,omitempty"`
	// NoWatch disables live source watching.
	NoWatch bool `yaml:"no_watch,omitempty"`
}

// Config is the parsed omnote.yml document.
type Config struct {
	Theme   ThemeConfig `yaml:"theme,omitempty"`
	Timings Timings     `yaml:"timings,omitempty"`

	// Extensions carries sections this core does not interpret, so the
	// GUI layer can keep its own settings in the same file.
	Extensions map[string]interface{} `yaml:",inline"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero-valued timing fields.
func (c *Config) ApplyDefaults() {
	if c.Timings.ThemeDebounce == 0 {
		c.Timings.ThemeDebounce = 300 * time.Millisecond
	}
	if c.Timings.ThemePollInterval == 0 {
		c.Timings.ThemePollInterval = 5 * time.Second
	}
	if c.Timings.AutosaveIdle == 0 {
		c.Timings.AutosaveIdle = 2 * time.Second
	}
	if c.Timings.AutosaveMaxLatency == 0 {
		c.Timings.AutosaveMaxLatency = 30 * time.Second
	}
	if c.Timings.StateSaveInterval == 0 {
		c.Timings.StateSaveInterval = 60 * time.Second
	}
	if c.Timings.AutosaveRetention == 0 {
		c.Timings.AutosaveRetention = 7 * 24 * time.Hour
	}
	if c.Theme.Mode == "" {
		c.Theme.Mode = "live"
	}
}

// Load reads and parses an omnote.yml from an explicit path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadDefault loads the user's omnote.yml, falling back to defaults when
// the file is absent or unparsable. The error return reports parse
// problems for logging; the returned config is always usable.
func LoadDefault() (*Config, error) {
	path := paths.ConfigFile()
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromBytes parses configuration from raw YAML.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// UnmarshalExtension decodes an uninterpreted config section into a
// strongly-typed target struct. A missing key is not an error; the
// target simply stays zero-valued.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} references in the
// raw file content before parsing.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
