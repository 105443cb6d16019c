package cmd

import (
	"bufio"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/omnote/core/pkg/paths"
)

// NewLogsCmd creates the debug log viewer command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the omnote debug log",
		Long: `Print the omnote debug log (~/.cache/omnote/debug.log).

The core subsystems append parser failures, write failures, and
recovery decisions here.`,
		Example: `  omnote logs --tail 100
  omnote logs -f`,
		RunE: runLogs,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow the log for new lines")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath := paths.DebugLogFile()
	if logPath == "" {
		return fmt.Errorf("cannot determine debug log location")
	}

	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	if !follow {
		return printLogTail(logPath, tailLines)
	}

	t, err := tail.TailFile(logPath, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   stdlog.New(io.Discard, "", 0), // Suppress tail library debug output
	})
	if err != nil {
		return fmt.Errorf("cannot tail %s: %w", logPath, err)
	}
	defer t.Cleanup()

	for line := range t.Lines {
		if line.Err != nil {
			continue
		}
		fmt.Println(line.Text)
	}
	return nil
}

func printLogTail(path string, tailLines int) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	start := 0
	if tailLines >= 0 && len(lines) > tailLines {
		start = len(lines) - tailLines - 1
		if start < 0 {
			start = 0
		}
	}
	for _, line := range lines[start:] {
		if line != "" {
			fmt.Println(line)
		}
	}
	return nil
}
