package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/downloaders"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/utils"
)

const eventBuffer = 64

// Orchestrator runs at most one fetch or download at a time on a background
// goroutine and reports through Events. It never touches the history.
type Orchestrator struct {
	mu        sync.Mutex
	state     State
	taskID    string
	lastFetch *FetchedEvent
	events    chan Event

	media  MediaSource
	images ImageSource
	ffmpeg FFmpegCheck
}

func New(mediaSource MediaSource, imageSource ImageSource, ffmpeg FFmpegCheck) *Orchestrator {
	if ffmpeg == nil {
		ffmpeg = func(ctx context.Context) error { return media.CheckFFmpeg(ctx, "") }
	}
	return &Orchestrator{
		state:  StateIdle,
		events: make(chan Event, eventBuffer),
		media:  mediaSource,
		images: imageSource,
		ffmpeg: ffmpeg,
	}
}

func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastFetch is the most recent successful fetch, or nil.
func (o *Orchestrator) LastFetch() *FetchedEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastFetch
}

func (o *Orchestrator) claim(next State) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.IsActive() {
		return "", fmt.Errorf("%w (task %s is %s)", ErrBusy, o.taskID, o.state)
	}
	o.state = next
	o.taskID = "task-" + uuid.New().String()
	return o.taskID, nil
}

func (o *Orchestrator) finish(state State, event Event) {
	o.mu.Lock()
	o.state = state
	if fetched, ok := event.(FetchedEvent); ok {
		o.lastFetch = &fetched
	}
	o.mu.Unlock()
	o.events <- event
}

// StartFetch begins probing url. Input errors and ErrBusy are returned
// before any task starts.
func (o *Orchestrator) StartFetch(ctx context.Context, rawURL string) (string, error) {
	url, err := media.ValidateURL(rawURL)
	if err != nil {
		return "", err
	}
	id, err := o.claim(StateFetching)
	if err != nil {
		return "", err
	}
	log.Debug().Str("op", "orchestrator/StartFetch").Msgf("Task %s fetching %s", id, url)
	go o.runFetch(ctx, id, url)
	return id, nil
}

func (o *Orchestrator) runFetch(ctx context.Context, id, url string) {
	if media.IsImageURL(url) {
		details, err := o.images.Fetch(ctx, url)
		if err != nil {
			o.fail(id, PhaseFetch, err)
			return
		}
		o.finish(StateFetched, FetchedEvent{
			TaskID:  id,
			URL:     url,
			IsImage: true,
			Image:   details,
			Formats: media.FormatList{Video: []media.Format{details.Format()}},
		})
		return
	}
	info, err := o.media.Probe(ctx, url)
	if err != nil {
		o.fail(id, PhaseFetch, err)
		return
	}
	o.finish(StateFetched, FetchedEvent{
		TaskID:  id,
		URL:     url,
		Info:    info,
		Formats: media.BuildFormatList(info.Formats),
	})
}

func (o *Orchestrator) fail(id string, phase Phase, err error) {
	log.Debug().Str("op", "orchestrator/fail").Err(err).Msgf("Task %s failed during %s", id, phase)
	o.finish(StateFailed, FailedEvent{TaskID: id, Phase: phase, Err: err})
}

// StartDownload validates req and begins the download. Malformed trims,
// empty URLs and ErrBusy are returned synchronously.
func (o *Orchestrator) StartDownload(ctx context.Context, req DownloadRequest) (string, error) {
	url, err := media.ValidateURL(req.URL)
	if err != nil {
		return "", err
	}
	req.URL = url
	isImage := media.IsImageURL(url)
	var trim *media.Trim
	if !isImage {
		if req.FormatID == "" {
			return "", fmt.Errorf("a format must be selected")
		}
		if trim, err = media.ParseTrim(req.TrimStart, req.TrimEnd); err != nil {
			return "", err
		}
	}
	id, err := o.claim(StateDownloading)
	if err != nil {
		return "", err
	}
	log.Debug().Str("op", "orchestrator/StartDownload").Msgf("Task %s downloading %s", id, url)
	if isImage {
		go o.runImageDownload(ctx, id, req)
	} else {
		go o.runMediaDownload(ctx, id, req, trim)
	}
	return id, nil
}

// progressTracker keeps emitted percentages non-decreasing within [0,100].
type progressTracker struct {
	o    *Orchestrator
	id   string
	last float64
	text func(downloaders.Progress) string
}

func (p *progressTracker) update(progress downloaders.Progress) {
	pct := progress.Percent()
	if pct < p.last {
		pct = p.last
	}
	p.last = pct
	p.o.emitProgress(ProgressEvent{TaskID: p.id, Percent: pct, Status: p.text(progress)})
}

// emitProgress drops the update when the consumer lags; the next update or
// the final 100 supersedes it.
func (o *Orchestrator) emitProgress(event ProgressEvent) {
	select {
	case o.events <- event:
	default:
	}
}

func (o *Orchestrator) runMediaDownload(ctx context.Context, id string, req DownloadRequest, trim *media.Trim) {
	if trim != nil || req.FormatID == media.BestFormatID {
		if err := o.ffmpeg(ctx); err != nil {
			o.fail(id, PhaseDownload, err)
			return
		}
	}
	tracker := &progressTracker{o: o, id: id, text: downloaders.Progress.MediaStatus}
	path, err := o.media.Download(ctx, clipytdlp.Request{
		URL:       req.URL,
		FormatID:  req.FormatID,
		OutputDir: req.OutputDir,
		Trim:      trim,
		Embed:     req.Embed,
	}, tracker.update)
	if err != nil {
		o.fail(id, PhaseDownload, err)
		return
	}
	o.complete(id, path, req.FormatID, false)
}

func (o *Orchestrator) runImageDownload(ctx context.Context, id string, req DownloadRequest) {
	name := req.ImageName
	if name == "" {
		name = media.ImageFilename(req.URL)
	}
	tracker := &progressTracker{o: o, id: id, text: downloaders.Progress.ImageStatus}
	path, err := o.images.Download(ctx, req.URL, filepath.Join(req.OutputDir, name), tracker.update)
	if err != nil {
		o.fail(id, PhaseDownload, err)
		return
	}
	o.complete(id, path, "image", true)
}

func (o *Orchestrator) complete(id, path, formatID string, isImage bool) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	result := Result{
		Path:     path,
		Filename: filepath.Base(path),
		Size:     utils.FormatSize(size),
		FormatID: formatID,
		IsImage:  isImage,
	}
	o.events <- ProgressEvent{TaskID: id, Percent: 100, Status: "Complete"}
	o.finish(StateCompleted, DoneEvent{TaskID: id, Result: result})
}
