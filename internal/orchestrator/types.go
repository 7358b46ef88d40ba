package orchestrator

import (
	"context"
	"errors"

	"github.com/tanq16/clipshr/internal/downloaders"
	clipimage "github.com/tanq16/clipshr/internal/downloaders/image"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
)

// State of the single task slot.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateFetched     State = "fetched"
	StateDownloading State = "downloading"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

func (s State) String() string {
	return string(s)
}

// IsActive reports whether a background task owns the slot.
func (s State) IsActive() bool {
	return s == StateFetching || s == StateDownloading
}

type Phase string

const (
	PhaseFetch    Phase = "fetch"
	PhaseDownload Phase = "download"
)

var ErrBusy = errors.New("another fetch or download is still running")

type MediaSource interface {
	Probe(ctx context.Context, url string) (*media.Info, error)
	Download(ctx context.Context, req clipytdlp.Request, onProgress downloaders.ProgressFunc) (string, error)
}

type ImageSource interface {
	Fetch(ctx context.Context, url string) (*clipimage.Details, error)
	Download(ctx context.Context, url, outputPath string, onProgress downloaders.ProgressFunc) (string, error)
}

type FFmpegCheck func(ctx context.Context) error

// DownloadRequest is validated synchronously by StartDownload.
type DownloadRequest struct {
	URL       string
	FormatID  string
	OutputDir string
	TrimStart string
	TrimEnd   string
	Embed     bool
	// ImageName overrides the file name derived from an image URL.
	ImageName string
}

type Result struct {
	Path     string
	Filename string
	Size     string
	FormatID string
	IsImage  bool
}

// Event is sent on the orchestrator channel. The concrete types are
// ProgressEvent, FetchedEvent, DoneEvent and FailedEvent.
type Event interface {
	Task() string
}

type ProgressEvent struct {
	TaskID  string
	Percent float64
	Status  string
}

type FetchedEvent struct {
	TaskID  string
	URL     string
	IsImage bool
	Info    *media.Info
	Image   *clipimage.Details
	Formats media.FormatList
}

type DoneEvent struct {
	TaskID string
	Result Result
}

type FailedEvent struct {
	TaskID string
	Phase  Phase
	Err    error
}

func (e ProgressEvent) Task() string { return e.TaskID }
func (e FetchedEvent) Task() string  { return e.TaskID }
func (e DoneEvent) Task() string     { return e.TaskID }
func (e FailedEvent) Task() string   { return e.TaskID }

func (e FailedEvent) Error() string {
	return e.Err.Error()
}

// Title is the display title of a fetch result.
func (e FetchedEvent) Title() string {
	if e.IsImage && e.Image != nil {
		return e.Image.Title
	}
	if e.Info != nil {
		return e.Info.Title
	}
	return ""
}
