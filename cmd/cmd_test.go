package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/tanq16/clipshr/internal/app"
	"github.com/tanq16/clipshr/internal/config"
	"github.com/tanq16/clipshr/internal/downloaders"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

func TestParseBatch(t *testing.T) {
	data := []byte(`
- link: https://example.com/watch?v=abc
  format: "22"
  start: "00:00:10"
  end: "00:01:00"
- link: "  "
- link: https://example.com/a/photo.jpg
`)
	jobs, err := parseBatch(data, true)
	if err != nil {
		t.Fatalf("parseBatch failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	first := jobs[0]
	if first.FormatID != "22" || first.TrimStart != "00:00:10" || first.TrimEnd != "00:01:00" || !first.Embed {
		t.Errorf("Unexpected first job %+v", first)
	}
	if jobs[1].URL != "https://example.com/a/photo.jpg" || jobs[1].FormatID != "" {
		t.Errorf("Unexpected second job %+v", jobs[1])
	}
}

func TestParseBatchInvalid(t *testing.T) {
	if _, err := parseBatch([]byte("- link: [unclosed"), false); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func loadTestState(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvHome, config.EnvMediaFolder, config.EnvProxy} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	var err error
	state, err = app.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	globalHTTPConfig = utils.HTTPClientConfig{}
}

func TestRunDownloadJobImage(t *testing.T) {
	loadTestState(t)
	payload := bytes.Repeat([]byte("img"), 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	mgr := output.NewManager()
	id := mgr.Register("image")
	err := runDownloadJob(context.Background(), newOrchestrator(), mgr, id, downloadJob{URL: srv.URL + "/pics/cat.jpg"})
	if err != nil {
		t.Fatalf("runDownloadJob failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(state.MediaFolder(), "cat.jpg"))
	if err != nil || !bytes.Equal(data, payload) {
		t.Fatalf("Downloaded file mismatch: %v", err)
	}
	records := state.Ledger.Display()
	if len(records) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(records))
	}
	if !records[0].IsImage || records[0].Filename != "cat.jpg" || records[0].Title != "cat.jpg" {
		t.Errorf("Unexpected record %+v", records[0])
	}
}

func TestRunDownloadJobFetchFailure(t *testing.T) {
	loadTestState(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	mgr := output.NewManager()
	id := mgr.Register("missing")
	if err := runDownloadJob(context.Background(), newOrchestrator(), mgr, id, downloadJob{URL: srv.URL + "/gone.png"}); err == nil {
		t.Fatal("Expected fetch failure")
	}
	if len(mgr.Errors()) != 1 {
		t.Errorf("Expected the error reported on the manager, got %d", len(mgr.Errors()))
	}
	if len(state.Ledger.Display()) != 0 {
		t.Error("Failed download must not be recorded")
	}
}

type countingMedia struct {
	fetches int
}

func (c *countingMedia) Probe(ctx context.Context, url string) (*media.Info, error) {
	c.fetches++
	return &media.Info{Title: "clip"}, nil
}

func (c *countingMedia) Download(ctx context.Context, req clipytdlp.Request, onProgress downloaders.ProgressFunc) (string, error) {
	return "", errors.New("not expected")
}

func TestRunDownloadJobRejectsTrimBeforeFetch(t *testing.T) {
	loadTestState(t)
	tests := []struct {
		start string
		end   string
		want  error
	}{
		{"1:30", "", media.ErrInvalidTrimTime},
		{"00:00:10", "25:00:00", media.ErrInvalidTrimTime},
		{"00:01:00", "00:00:30", media.ErrTrimOrder},
	}
	for _, tt := range tests {
		source := &countingMedia{}
		orch := orchestrator.New(source, nil, func(ctx context.Context) error { return nil })
		mgr := output.NewManager()
		id := mgr.Register("trim")
		err := runDownloadJob(context.Background(), orch, mgr, id, downloadJob{
			URL:       "https://example.com/watch?v=abc",
			FormatID:  media.BestFormatID,
			TrimStart: tt.start,
			TrimEnd:   tt.end,
		})
		if !errors.Is(err, tt.want) {
			t.Errorf("Trim %q-%q: expected %v, got %v", tt.start, tt.end, tt.want, err)
		}
		if orch.State() != orchestrator.StateIdle || source.fetches != 0 {
			t.Errorf("Trim %q-%q: task started (state %s, %d fetches)", tt.start, tt.end, orch.State(), source.fetches)
		}
	}
}

func TestBuildHTTPConfigHeaders(t *testing.T) {
	loadTestState(t)
	headers = []string{"Referer: https://example.com", "X-Token:abc"}
	defer func() { headers = nil }()
	cfg := buildHTTPConfig()
	if cfg.Headers["Referer"] != "https://example.com" || cfg.Headers["X-Token"] != "abc" {
		t.Errorf("Unexpected headers %v", cfg.Headers)
	}
}
