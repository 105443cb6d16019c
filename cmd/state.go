package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnote/core/session"
)

// NewStateCmd creates the session state inspection command.
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the persisted session state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the persisted session document",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := session.NewStore().Load()
			return json.NewEncoder(os.Stdout).Encode(state)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Reset the persisted session to the default empty session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.NewStore()
			if err := store.Save(session.DefaultState()); err != nil {
				return err
			}
			fmt.Println("session state reset")
			return nil
		},
	})

	return cmd
}
