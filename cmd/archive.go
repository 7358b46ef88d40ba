package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/archive"
	"github.com/tanq16/clipshr/internal/output"
)

func newArchiveCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "archive [s3://BUCKET/PREFIX] [--profile PROFILE]",
		Short: "Back up history.json and downloaded files to S3",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target, err := archive.ParseS3URL(args[0])
			if err != nil {
				fatal("%v", err)
			}
			archiver, err := archive.NewS3Archiver(cmd.Context(), profile, target)
			if err != nil {
				fatal("%v", err)
			}
			mgr := output.NewManager()
			taskID := mgr.Register("Archive to " + target.String())
			mgr.SetStatus(taskID, "running")
			mgr.StartDisplay()
			report, err := archiver.Backup(cmd.Context(), state.Ledger, state.MediaFolder(), func(name string) {
				mgr.AddStreamLine(taskID, "Uploading "+name)
			})
			if err != nil {
				mgr.ReportError(taskID, err)
			} else {
				mgr.Complete(taskID, fmt.Sprintf("Uploaded %d files to %s", len(report.Uploaded), target))
			}
			mgr.StopDisplay()
			for _, name := range report.Missing {
				output.PrintWarning("Missing on disk: " + name)
			}
			for name, ferr := range report.Failed {
				output.PrintError(fmt.Sprintf("Upload failed for %s: %v", name, ferr))
			}
			if err != nil || len(report.Failed) > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "default", "AWS shared config profile")
	return cmd
}
