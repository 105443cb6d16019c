package logging

// Config defines the structure for the logging section in omnote.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the OMNOTE_LOG_LEVEL environment variable.
	Level string `yaml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the OMNOTE_LOG_CALLER=true environment variable.
	ReportCaller bool `yaml:"report_caller"`

	// Format configures the appearance of the log output.
	Format FormatConfig `yaml:"format"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (text), "simple" (minimal text), or "json".
	Preset string `yaml:"preset"`
	// DisableTimestamp disables the timestamp from the "default" and "simple" formats.
	DisableTimestamp bool `yaml:"disable_timestamp"`
	// DisableComponent disables the component name from the "default" and "simple" formats.
	DisableComponent bool `yaml:"disable_component"`
	// StructuredToStderr controls when log lines are mirrored to stderr.
	// Can be "auto" (default), "always", or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
