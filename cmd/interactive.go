package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/tui"
	"github.com/tanq16/clipshr/internal/utils"
)

const debugLogName = "clipshr-debug.log"

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Short:   "Start the interactive downloader (default when no command is given)",
		Aliases: []string{"i", "ui"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context())
		},
	}
}

// runInteractive moves logging off the terminal while the UI owns it,
// into a file under home with --debug.
func runInteractive(ctx context.Context) error {
	var sink io.Writer = io.Discard
	if debug {
		file, err := os.OpenFile(filepath.Join(state.Home, debugLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			defer file.Close()
			sink = file
		}
	}
	utils.SetLogOutput(sink)
	defer utils.InitLogger(debug)
	return tui.Run(ctx, state, newOrchestrator())
}
