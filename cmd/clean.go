package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path]",
		Short: "Clean up temporary download files in the media folder",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := state.MediaFolder()
			if len(args) > 0 {
				dir = args[0]
			}
			if err := utils.CleanTemp(dir); err != nil {
				fatal("Error cleaning up temporary files: %v", err)
			}
			output.PrintSuccess("Temporary files cleaned up")
		},
	}
}
