package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/output"
	"gopkg.in/yaml.v3"
)

type BatchEntry struct {
	Link   string `yaml:"link"`
	Format string `yaml:"format,omitempty"`
	Start  string `yaml:"start,omitempty"`
	End    string `yaml:"end,omitempty"`
}

// BatchFile is a top-level YAML list of entries.
type BatchFile []BatchEntry

func newBatchCmd() *cobra.Command {
	var noEmbed bool

	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Process multiple downloads from a YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fatal("Error reading YAML file: %v", err)
			}
			jobs, err := parseBatch(data, state.Config.DefaultCompress && !noEmbed)
			if err != nil {
				fatal("Error parsing YAML file: %v", err)
			}
			if len(jobs) == 0 {
				fatal("No valid jobs found in the batch file")
			}
			log.Debug().Str("op", "cmd/batch").Msgf("Running %d jobs", len(jobs))

			orch := newOrchestrator()
			mgr := output.NewManager()
			ids := make([]int, len(jobs))
			for i, job := range jobs {
				ids[i] = mgr.Register(job.URL)
			}
			mgr.StartDisplay()
			failed := 0
			// one task slot, so jobs run in file order
			for i, job := range jobs {
				if err := runDownloadJob(cmd.Context(), orch, mgr, ids[i], job); err != nil {
					failed++
				}
			}
			mgr.StopDisplay()
			if failed > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "Skip embedding metadata and thumbnail")
	return cmd
}

func parseBatch(data []byte, embed bool) ([]downloadJob, error) {
	var batchFile BatchFile
	if err := yaml.Unmarshal(data, &batchFile); err != nil {
		return nil, err
	}
	var jobs []downloadJob
	for i, entry := range batchFile {
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			fmt.Fprintf(os.Stderr, "Warning: Empty link in entry %d, skipping...\n", i+1)
			continue
		}
		jobs = append(jobs, downloadJob{
			URL:       link,
			FormatID:  entry.Format,
			TrimStart: entry.Start,
			TrimEnd:   entry.End,
			Embed:     embed,
		})
	}
	return jobs, nil
}
