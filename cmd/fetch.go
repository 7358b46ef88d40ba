package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/output"
)

func newFetchCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "fetch [URL] [--markdown]",
		Short: "Show details and available formats for a link",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			orch := newOrchestrator()
			output.PrintPending("Fetching details...")
			fetched, err := fetchDetails(cmd.Context(), orch, args[0])
			if err != nil {
				fatal("%v", err)
			}
			printDetails(fetched)
			t := output.NewTable([]string{"#", "Format ID", "Quality", "Ext", "Size"})
			for i, f := range fetched.Formats.All() {
				t.AddRow(strconv.Itoa(i+1), f.ID, f.Quality, f.Ext, f.Size)
			}
			t.PrintTable(markdown)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the format table as markdown")
	return cmd
}

func printDetails(fetched *orchestrator.FetchedEvent) {
	output.PrintHeader(fetched.Title())
	if fetched.IsImage {
		img := fetched.Image
		output.PrintKeyValue("Type", img.TypeLabel())
		output.PrintKeyValue("Source", img.Host)
		output.PrintKeyValue("File", img.Filename)
		return
	}
	info := fetched.Info
	output.PrintKeyValue("Type", info.TypeLabel())
	output.PrintKeyValue("Source", info.Source())
	output.PrintKeyValue("Date", info.Date())
}
