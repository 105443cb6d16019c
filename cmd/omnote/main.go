package main

import (
	"fmt"
	"os"

	"github.com/omnote/core/cli"
	"github.com/omnote/core/cmd"
	"github.com/omnote/core/errors"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"omnote",
		"Configuration and state continuity core for the omnote editor",
	)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewThemeCmd())
	rootCmd.AddCommand(cmd.NewStateCmd())
	rootCmd.AddCommand(cmd.NewRecoverCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		if code := errors.GetCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
