package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnote/core/cli"
	"github.com/omnote/core/pkg/paths"
	"github.com/omnote/core/session"
)

// NewRecoverCmd creates the crash recovery inspection command.
func NewRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Inspect the autosave recovery cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tabs that would be offered for recovery at startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cli.LoadConfig(cmd)

			autosaver := session.NewAutosaver(paths.AutosaveDir(), cfg.Timings.AutosaveIdle, cfg.Timings.AutosaveMaxLatency)
			defer autosaver.Close()

			state := session.NewStore().Load()
			coordinator := session.NewRecoveryCoordinator(autosaver, cfg.Timings.AutosaveRetention)
			recovered := coordinator.Reconcile(state)

			if len(recovered) == 0 {
				fmt.Println("no recoverable tabs")
				return nil
			}
			for _, r := range recovered {
				name := r.Tab.FilePath
				if name == "" {
					name = "(untitled)"
				}
				fmt.Printf("%s  tab=%s  %d bytes  saved %s\n",
					name, r.Tab.TabID, len(r.Content), r.SavedAt.Format(time.RFC3339))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Discard every autosave record and blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cli.LoadConfig(cmd)

			autosaver := session.NewAutosaver(paths.AutosaveDir(), cfg.Timings.AutosaveIdle, cfg.Timings.AutosaveMaxLatency)
			defer autosaver.Close()

			records := autosaver.Records()
			for _, rec := range records {
				autosaver.Discard(rec.TabID)
			}
			fmt.Printf("purged %d autosave record(s)\n", len(records))
			return nil
		},
	})

	return cmd
}
