// Package cmd implements the omnote inspection subcommands. They drive
// the same core packages the GUI shell embeds, so resolution and
// persistence behavior can be exercised and debugged without a display.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omnote/core/cli"
	"github.com/omnote/core/theme"
)

// NewThemeCmd creates the theme inspection command.
func NewThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Resolve and print the effective theme",
		RunE:  runThemeResolve,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Watch theme sources and print each applied change",
		RunE:  runThemeWatch,
	})

	return cmd
}

func runThemeResolve(cmd *cobra.Command, args []string) error {
	cfg := cli.LoadConfig(cmd)

	resolver := theme.NewResolver(cfg.Theme.Mode == "system")
	spec := resolver.Resolve(theme.NewRegistry(theme.RegistryOptions{}))

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(specJSON(spec))
	}

	printSpec(spec)
	return nil
}

func runThemeWatch(cmd *cobra.Command, args []string) error {
	cfg := cli.LoadConfig(cmd)
	logger := cli.GetLogger(cmd)

	if cfg.Theme.NoWatch {
		return fmt.Errorf("watching is disabled (--no-watch / OMNOTE_NO_WATCH)")
	}

	sync := theme.NewSynchronizer(theme.SynchronizerOptions{
		Resolver:     theme.NewResolver(cfg.Theme.Mode == "system"),
		Dispatch:     func(fn func()) { fn() },
		Debounce:     cfg.Timings.ThemeDebounce,
		PollInterval: cfg.Timings.ThemePollInterval,
		NoWatch:      cfg.Theme.NoWatch,
	})

	sync.Subscribe(func(spec theme.Spec) {
		printSpec(spec)
		fmt.Println()
	})
	sync.Start()
	defer sync.Stop()

	logger.Info("watching theme sources, Ctrl-C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func printSpec(spec theme.Spec) {
	fmt.Printf("source:     %s\n", spec.SourceID)
	fmt.Printf("mode:       %s\n", spec.Mode)
	fmt.Printf("background: %s\n", spec.Background)
	fmt.Printf("foreground: %s\n", spec.Foreground)
	fmt.Printf("accent:     %s\n", spec.Accent)
	fmt.Printf("cursor:     %s\n", spec.Cursor)
	fmt.Printf("selection:  %s on %s\n", spec.SelectionFG, spec.SelectionBG)
	for i, c := range spec.Palette {
		fmt.Printf("color%-2d    %s\n", i, c)
	}
}

func specJSON(spec theme.Spec) map[string]interface{} {
	return map[string]interface{}{
		"source":               spec.SourceID,
		"mode":                 string(spec.Mode),
		"background":           spec.Background,
		"foreground":           spec.Foreground,
		"accent":               spec.Accent,
		"cursor":               spec.Cursor,
		"selection_background": spec.SelectionBG,
		"selection_foreground": spec.SelectionFG,
		"palette":              spec.Palette[:],
	}
}
