package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/output"
)

func newDownloadCmd() *cobra.Command {
	var format string
	var start string
	var end string
	var noEmbed bool

	cmd := &cobra.Command{
		Use:     "download [URL] [--format FORMAT_ID] [--start HH:MM:SS] [--end HH:MM:SS]",
		Short:   "Download a video, audio track or image into the media folder",
		Aliases: []string{"dl"},
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			embed := state.Config.DefaultCompress && !noEmbed
			orch := newOrchestrator()
			mgr := output.NewManager()
			taskID := mgr.Register(args[0])
			mgr.StartDisplay()
			err := runDownloadJob(cmd.Context(), orch, mgr, taskID, downloadJob{
				URL:       args[0],
				FormatID:  format,
				TrimStart: start,
				TrimEnd:   end,
				Embed:     embed,
			})
			mgr.StopDisplay()
			if err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", media.BestFormatID, "Format ID from `clipshr fetch`")
	cmd.Flags().StringVar(&start, "start", "", "Trim start (HH:MM:SS)")
	cmd.Flags().StringVar(&end, "end", "", "Trim end (HH:MM:SS)")
	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "Skip embedding metadata and thumbnail")
	return cmd
}
