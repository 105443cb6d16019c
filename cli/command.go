// Package cli provides the shared cobra plumbing for omnote commands:
// standard flags, config loading with flag/env overrides, and logger
// wiring.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/omnote/core/config"
	"github.com/omnote/core/logging"
)

// NewStandardCommand creates a new command with the standard omnote flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("system-theme", false, "Force the system theme, skipping terminal config sources")
	cmd.PersistentFlags().Bool("no-watch", false, "Disable live theme source watching")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to omnote.yml config file")

	return cmd
}

// GetLogger creates a logger based on command flags.
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	entry := logging.NewLogger("omnote-cli")
	logger := entry.Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// LoadConfig loads omnote.yml (from --config or the default location)
// and applies the flag and environment overrides that select theme mode
// and watch behavior.
func LoadConfig(cmd *cobra.Command) *config.Config {
	var cfg *config.Config
	var err error

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			cfg = config.Default()
		}
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		logging.NewLogger("omnote-cli").Warnf("config unusable, using defaults: %v", err)
	}

	if forced, _ := cmd.Flags().GetBool("system-theme"); forced {
		cfg.Theme.Mode = "system"
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Theme.NoWatch = true
	}
	if os.Getenv("OMNOTE_NO_WATCH") == "1" || os.Getenv("MICROPAD_NO_WATCH") == "1" {
		cfg.Theme.NoWatch = true
	}

	return cfg
}
