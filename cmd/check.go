package cmd

import (
	"os"

	"github.com/spf13/cobra"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/output"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg and yt-dlp are available",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ok := true
			version, err := media.FFmpegVersion(cmd.Context(), ffmpegPath)
			if err != nil {
				output.PrintError(err.Error())
				ok = false
			} else {
				output.PrintSuccess(version)
			}
			output.PrintPending("Resolving yt-dlp (may download on first run)...")
			ytVersion, err := clipytdlp.EnsureInstalled(cmd.Context())
			if err != nil {
				output.PrintError(err.Error())
				ok = false
			} else {
				output.PrintSuccess("yt-dlp " + ytVersion)
			}
			if !ok {
				os.Exit(1)
			}
		},
	}
}
