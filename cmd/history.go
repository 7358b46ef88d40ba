package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/history"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List and manage past downloads",
		Aliases: []string{"h"},
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryClearCmd())
	cmd.AddCommand(newHistoryOpenCmd())
	return cmd
}

// parseEntry turns the 1-based number shown by `history list` into a
// display index.
func parseEntry(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fatal("Invalid entry number %q", arg)
	}
	return n - 1
}

func newHistoryListCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "list [--markdown]",
		Short: "List downloads, newest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			records := state.Ledger.Display()
			if len(records) == 0 {
				output.PrintInfo("No downloads yet")
				return
			}
			width := max(24, output.TerminalWidth()/4)
			t := output.NewTable([]string{"#", "Date", "Title", "Format", "Size", "File"})
			for i, record := range records {
				kind := record.Format
				if record.IsImage {
					kind = "Image"
				}
				t.AddRow(strconv.Itoa(i+1), record.Timestamp, output.Truncate(record.Title, width), kind, record.Size, output.Truncate(record.Filename, width))
			}
			t.PrintTable(markdown)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the table as markdown")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [N]",
		Short: "Remove entry N from history, keeping the file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			removed, err := state.Ledger.Delete(parseEntry(args[0]))
			if err != nil {
				fatal("Error deleting entry: %v", err)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %q from history (file kept)", removed.Title))
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "clear [--confirm 'DELETE ALL']",
		Short: "Delete every downloaded file and empty the history",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("confirm") {
				output.PrintWarning(fmt.Sprintf("This deletes every file listed in history from %s.", state.MediaFolder()))
				fmt.Printf("Type %q to confirm: ", history.ConfirmationPhrase)
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				confirm = strings.TrimRight(line, "\r\n")
			}
			report, err := state.ClearHistory(confirm)
			if errors.Is(err, history.ErrConfirmationMismatch) {
				output.PrintWarning("Confirmation did not match, nothing was deleted")
				return
			}
			if err != nil {
				fatal("Error clearing history: %v", err)
			}
			output.PrintSuccess(fmt.Sprintf("Deleted %d files, history cleared", len(report.Deleted)))
			if len(report.Missing) > 0 {
				output.PrintDetail(fmt.Sprintf("%d files were already gone", len(report.Missing)))
			}
			for name, ferr := range report.Failed {
				output.PrintError(fmt.Sprintf("Could not delete %s: %v", name, ferr))
			}
			if report.HasFailures() {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation phrase, skips the prompt")
	return cmd
}

func newHistoryOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [N]",
		Short: "Open the file of entry N with the system viewer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path, err := state.ResolveHistoryPath(parseEntry(args[0]))
			if err != nil {
				fatal("%v", err)
			}
			if err := utils.OpenPath(path); err != nil {
				fatal("%v", err)
			}
			output.PrintSuccess("Opened " + path)
		},
	}
}
