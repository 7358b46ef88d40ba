package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tanq16/clipshr/internal/downloaders"
	clipimage "github.com/tanq16/clipshr/internal/downloaders/image"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
)

type fakeMedia struct {
	info       *media.Info
	detailsErr error
	steps      []downloaders.Progress
	gate       chan struct{}
	filename   string
	dlErr      error
	requests   []clipytdlp.Request
	downloads  int
}

func (f *fakeMedia) Probe(ctx context.Context, url string) (*media.Info, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.info, f.detailsErr
}

func (f *fakeMedia) Download(ctx context.Context, req clipytdlp.Request, onProgress downloaders.ProgressFunc) (string, error) {
	f.downloads++
	f.requests = append(f.requests, req)
	if f.gate != nil {
		<-f.gate
	}
	for _, step := range f.steps {
		onProgress(step)
	}
	if f.dlErr != nil {
		return "", f.dlErr
	}
	path := filepath.Join(req.OutputDir, f.filename)
	if err := os.WriteFile(path, make([]byte, 2048), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeImages struct {
	details *clipimage.Details
	err     error
}

func (f *fakeImages) Fetch(ctx context.Context, url string) (*clipimage.Details, error) {
	return f.details, f.err
}

func (f *fakeImages) Download(ctx context.Context, url, outputPath string, onProgress downloaders.ProgressFunc) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	onProgress(downloaders.Progress{Downloaded: 512, Total: 1024})
	onProgress(downloaders.Progress{Downloaded: 1024, Total: 1024})
	if err := os.WriteFile(outputPath, make([]byte, 1024), 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func ffmpegOK(ctx context.Context) error { return nil }

func ffmpegMissing(ctx context.Context) error { return media.ErrFFmpegMissing }

// collect drains events until the task ends.
func collect(t *testing.T, o *Orchestrator) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-o.Events():
			events = append(events, ev)
			switch ev.(type) {
			case DoneEvent, FailedEvent, FetchedEvent:
				return events
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for task end, got %v", events)
		}
	}
}

func progressOf(events []Event) []float64 {
	var out []float64
	for _, ev := range events {
		if p, ok := ev.(ProgressEvent); ok {
			out = append(out, p.Percent)
		}
	}
	return out
}

func TestFetchMedia(t *testing.T) {
	fm := &fakeMedia{info: &media.Info{Title: "A Clip", Formats: []media.RawFormat{
		{FormatID: "18", VCodec: "avc1", ACodec: "mp4a", Height: 360, Filesize: 1000},
	}}}
	o := New(fm, &fakeImages{}, ffmpegOK)
	if o.State() != StateIdle {
		t.Fatalf("Expected idle, got %s", o.State())
	}
	id, err := o.StartFetch(context.Background(), " https://example.com/watch?v=x ")
	if err != nil {
		t.Fatalf("StartFetch failed: %v", err)
	}
	events := collect(t, o)
	fetched, ok := events[len(events)-1].(FetchedEvent)
	if !ok {
		t.Fatalf("Expected FetchedEvent, got %T", events[len(events)-1])
	}
	if fetched.TaskID != id || fetched.IsImage || fetched.Title() != "A Clip" {
		t.Errorf("Unexpected fetch event %+v", fetched)
	}
	if len(fetched.Formats.Video) != 2 || fetched.Formats.Video[0].ID != media.BestFormatID {
		t.Errorf("Unexpected formats %+v", fetched.Formats)
	}
	if o.State() != StateFetched || o.LastFetch() == nil {
		t.Errorf("Expected fetched state with stored result, got %s", o.State())
	}
}

func TestFetchImage(t *testing.T) {
	fi := &fakeImages{details: &clipimage.Details{Filename: "photo.jpg", Title: "photo.jpg", Size: 10}}
	o := New(&fakeMedia{}, fi, ffmpegOK)
	if _, err := o.StartFetch(context.Background(), "https://example.com/a/b/photo.jpg"); err != nil {
		t.Fatal(err)
	}
	events := collect(t, o)
	fetched := events[len(events)-1].(FetchedEvent)
	if !fetched.IsImage || len(fetched.Formats.Video) != 1 || fetched.Formats.Video[0].ID != media.ImageFormatID {
		t.Errorf("Unexpected image fetch %+v", fetched)
	}
}

func TestFetchFailureAllowsRetry(t *testing.T) {
	fm := &fakeMedia{detailsErr: clipytdlp.ErrUnsupportedURL}
	o := New(fm, &fakeImages{}, ffmpegOK)
	if _, err := o.StartFetch(context.Background(), "https://example.com/page"); err != nil {
		t.Fatal(err)
	}
	events := collect(t, o)
	failed, ok := events[len(events)-1].(FailedEvent)
	if !ok || failed.Phase != PhaseFetch || !errors.Is(failed.Err, clipytdlp.ErrUnsupportedURL) {
		t.Fatalf("Expected fetch failure, got %+v", events)
	}
	if o.State() != StateFailed {
		t.Errorf("Expected failed state, got %s", o.State())
	}
	fm.detailsErr = nil
	fm.info = &media.Info{Title: "ok"}
	if _, err := o.StartFetch(context.Background(), "https://example.com/page"); err != nil {
		t.Fatalf("Fetch after failure should be allowed: %v", err)
	}
	collect(t, o)
}

func TestInputErrorsAreSynchronous(t *testing.T) {
	fm := &fakeMedia{filename: "x.mp4"}
	o := New(fm, &fakeImages{}, ffmpegOK)
	if _, err := o.StartFetch(context.Background(), "   "); !errors.Is(err, media.ErrEmptyURL) {
		t.Errorf("Expected ErrEmptyURL, got %v", err)
	}
	for _, tc := range []struct{ start, end string }{{"1:30", ""}, {"00:99:00", ""}, {"00:02:00", "00:01:00"}} {
		_, err := o.StartDownload(context.Background(), DownloadRequest{
			URL: "https://example.com/watch?v=x", FormatID: "18", OutputDir: t.TempDir(),
			TrimStart: tc.start, TrimEnd: tc.end,
		})
		if err == nil {
			t.Errorf("Expected trim %q-%q to be rejected", tc.start, tc.end)
		}
	}
	if o.State() != StateIdle || fm.downloads != 0 {
		t.Errorf("No task should have started: state %s, downloads %d", o.State(), fm.downloads)
	}
	select {
	case ev := <-o.Events():
		t.Errorf("Unexpected event %+v", ev)
	default:
	}
}

func TestDownloadProgressMonotonic(t *testing.T) {
	dir := t.TempDir()
	fm := &fakeMedia{filename: "A Clip.mp4", steps: []downloaders.Progress{
		{Downloaded: 10, Total: 100},
		{Downloaded: 5, Total: 100},
		{Downloaded: 50, Total: 100},
		{Downloaded: 70},
		{Downloaded: 150, Total: 100},
		{Downloaded: 80, Total: 100},
	}}
	o := New(fm, &fakeImages{}, ffmpegOK)
	id, err := o.StartDownload(context.Background(), DownloadRequest{
		URL: "https://example.com/watch?v=x", FormatID: "22", OutputDir: dir, Embed: true,
		TrimStart: "00:00:10", TrimEnd: "00:00:20",
	})
	if err != nil {
		t.Fatalf("StartDownload failed: %v", err)
	}
	events := collect(t, o)
	percents := progressOf(events)
	if len(percents) == 0 {
		t.Fatal("Expected progress events")
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("Progress decreased at %d: %v", i, percents)
		}
	}
	for _, p := range percents {
		if p < 0 || p > 100 {
			t.Errorf("Progress out of range: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("Expected final progress 100, got %v", percents)
	}
	done, ok := events[len(events)-1].(DoneEvent)
	if !ok {
		t.Fatalf("Expected DoneEvent, got %T", events[len(events)-1])
	}
	want := Result{Path: filepath.Join(dir, "A Clip.mp4"), Filename: "A Clip.mp4", Size: "2.00 KB", FormatID: "22"}
	if done.TaskID != id || done.Result != want {
		t.Errorf("Unexpected result %+v", done.Result)
	}
	req := fm.requests[0]
	if req.Trim == nil || req.Trim.Section() != "*00:00:10-00:00:20" || !req.Embed {
		t.Errorf("Unexpected request %+v", req)
	}
	if o.State() != StateCompleted {
		t.Errorf("Expected completed, got %s", o.State())
	}
}

func TestBusyRejectsSecondTask(t *testing.T) {
	gate := make(chan struct{})
	fm := &fakeMedia{filename: "a.mp4", gate: gate}
	o := New(fm, &fakeImages{}, ffmpegOK)
	if _, err := o.StartDownload(context.Background(), DownloadRequest{
		URL: "https://example.com/watch?v=x", FormatID: "18", OutputDir: t.TempDir(),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.StartFetch(context.Background(), "https://example.com/watch?v=y"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for fetch, got %v", err)
	}
	if _, err := o.StartDownload(context.Background(), DownloadRequest{
		URL: "https://example.com/watch?v=y", FormatID: "18", OutputDir: t.TempDir(),
	}); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for download, got %v", err)
	}
	close(gate)
	collect(t, o)
	if fm.downloads != 1 {
		t.Errorf("Expected exactly one download, got %d", fm.downloads)
	}
}

func TestFFmpegRequired(t *testing.T) {
	tests := []struct {
		name     string
		formatID string
		start    string
		wantFail bool
	}{
		{"best composite", media.BestFormatID, "", true},
		{"trim", "18", "00:00:05", true},
		{"plain format", "18", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeMedia{filename: "a.mp4"}
			o := New(fm, &fakeImages{}, ffmpegMissing)
			if _, err := o.StartDownload(context.Background(), DownloadRequest{
				URL: "https://example.com/watch?v=x", FormatID: tt.formatID, OutputDir: t.TempDir(), TrimStart: tt.start,
			}); err != nil {
				t.Fatal(err)
			}
			events := collect(t, o)
			failed, isFailed := events[len(events)-1].(FailedEvent)
			if isFailed != tt.wantFail {
				t.Fatalf("Expected failure=%v, got %+v", tt.wantFail, events)
			}
			if tt.wantFail {
				if failed.Phase != PhaseDownload || !errors.Is(failed.Err, media.ErrFFmpegMissing) {
					t.Errorf("Unexpected failure %+v", failed)
				}
				if fm.downloads != 0 {
					t.Error("Download must not start without ffmpeg")
				}
			}
		})
	}
}

func TestDownloadFailure(t *testing.T) {
	fm := &fakeMedia{dlErr: errors.New("network lost")}
	o := New(fm, &fakeImages{}, ffmpegOK)
	if _, err := o.StartDownload(context.Background(), DownloadRequest{
		URL: "https://example.com/watch?v=x", FormatID: "18", OutputDir: t.TempDir(),
	}); err != nil {
		t.Fatal(err)
	}
	events := collect(t, o)
	failed, ok := events[len(events)-1].(FailedEvent)
	if !ok || failed.Phase != PhaseDownload || failed.Error() != "network lost" {
		t.Errorf("Expected download failure, got %+v", events)
	}
}

func TestImageDownload(t *testing.T) {
	dir := t.TempDir()
	o := New(&fakeMedia{}, &fakeImages{}, ffmpegMissing)
	if _, err := o.StartDownload(context.Background(), DownloadRequest{
		URL: "https://example.com/a/photo.png", OutputDir: dir, TrimStart: "garbage",
	}); err != nil {
		t.Fatalf("Image downloads ignore trim and format: %v", err)
	}
	events := collect(t, o)
	done, ok := events[len(events)-1].(DoneEvent)
	if !ok {
		t.Fatalf("Expected DoneEvent, got %+v", events)
	}
	if !done.Result.IsImage || done.Result.Filename != "photo.png" || done.Result.FormatID != "image" {
		t.Errorf("Unexpected image result %+v", done.Result)
	}
	percents := progressOf(events)
	if percents[len(percents)-1] != 100 {
		t.Errorf("Expected final 100, got %v", percents)
	}
	for _, ev := range events {
		if p, ok := ev.(ProgressEvent); ok && p.Percent == 50 && p.Status != "Downloaded: 512 B" {
			t.Errorf("Unexpected image status %q", p.Status)
		}
	}
}
