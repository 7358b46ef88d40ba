package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

// awaitTask drains orchestrator events for id until its terminal event.
// Progress updates are forwarded to onProgress when set.
func awaitTask(ctx context.Context, orch *orchestrator.Orchestrator, id string, onProgress func(orchestrator.ProgressEvent)) (orchestrator.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event := <-orch.Events():
			if event.Task() != id {
				log.Debug().Str("op", "cmd/awaitTask").Msgf("Skipping event from stale task %s", event.Task())
				continue
			}
			switch ev := event.(type) {
			case orchestrator.ProgressEvent:
				if onProgress != nil {
					onProgress(ev)
				}
			case orchestrator.FailedEvent:
				return ev, ev.Err
			default:
				return ev, nil
			}
		}
	}
}

// fetchDetails runs the fetch phase to completion.
func fetchDetails(ctx context.Context, orch *orchestrator.Orchestrator, url string) (*orchestrator.FetchedEvent, error) {
	id, err := orch.StartFetch(ctx, url)
	if err != nil {
		return nil, err
	}
	event, err := awaitTask(ctx, orch, id, nil)
	if err != nil {
		return nil, err
	}
	fetched, ok := event.(orchestrator.FetchedEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected event %T while fetching", event)
	}
	return &fetched, nil
}

// downloadJob is one fetch-then-download unit driven through the output manager.
type downloadJob struct {
	URL       string
	FormatID  string
	TrimStart string
	TrimEnd   string
	Embed     bool
}

// runDownloadJob fetches details, downloads the chosen format and records
// the ledger entry. Progress is reported on the manager under taskID.
func runDownloadJob(ctx context.Context, orch *orchestrator.Orchestrator, mgr *output.Manager, taskID int, job downloadJob) error {
	log := utils.GetLogger("download-job").With().Str("url", job.URL).Logger()
	// trim input is rejected before any background task starts
	if !media.IsImageURL(job.URL) {
		if _, err := media.ParseTrim(job.TrimStart, job.TrimEnd); err != nil {
			mgr.ReportError(taskID, err)
			return err
		}
	}
	mgr.SetStatus(taskID, "running")
	mgr.SetMessage(taskID, "Fetching details for "+job.URL)
	fetched, err := fetchDetails(ctx, orch, job.URL)
	if err != nil {
		mgr.ReportError(taskID, err)
		return err
	}
	title := fetched.Title()
	req := orchestrator.DownloadRequest{
		URL:       fetched.URL,
		FormatID:  job.FormatID,
		OutputDir: state.MediaFolder(),
		TrimStart: job.TrimStart,
		TrimEnd:   job.TrimEnd,
		Embed:     job.Embed,
	}
	label := ""
	if fetched.IsImage {
		req.ImageName = fetched.Image.Filename
		label = fetched.Image.Format().Quality
	} else {
		if req.FormatID == "" {
			req.FormatID = media.BestFormatID
		}
		format, ok := fetched.Formats.Find(req.FormatID)
		if !ok {
			err := fmt.Errorf("format %q is not available for %s", req.FormatID, title)
			mgr.ReportError(taskID, err)
			return err
		}
		label = format.Quality
	}

	mgr.SetMessage(taskID, "Downloading "+title)
	id, err := orch.StartDownload(ctx, req)
	if err != nil {
		mgr.ReportError(taskID, err)
		return err
	}
	event, err := awaitTask(ctx, orch, id, func(ev orchestrator.ProgressEvent) {
		mgr.SetProgress(taskID, ev.Percent, ev.Status)
	})
	if err != nil {
		mgr.ReportError(taskID, err)
		return err
	}
	done, ok := event.(orchestrator.DoneEvent)
	if !ok {
		err := fmt.Errorf("unexpected event %T while downloading", event)
		mgr.ReportError(taskID, err)
		return err
	}
	if _, err := state.RecordDownload(fetched.URL, title, label, done.Result); err != nil {
		log.Warn().Err(err).Msg("Could not record download")
	}
	log.Debug().Msgf("Saved %s", done.Result.Path)
	mgr.Complete(taskID, fmt.Sprintf("Saved %s (%s)", done.Result.Filename, done.Result.Size))
	return nil
}
