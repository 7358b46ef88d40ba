package clipytdlp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{errors.New("ERROR: Unsupported URL: https://example.com"), ErrUnsupportedURL},
		{errors.New("ERROR: No video formats found"), ErrUnsupportedURL},
	}
	for _, tt := range tests {
		if got := fetchError(tt.err, nil); !errors.Is(got, tt.want) {
			t.Errorf("fetchError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	other := fetchError(errors.New("network unreachable"), nil)
	if errors.Is(other, ErrUnsupportedURL) || other == nil {
		t.Errorf("Unexpected mapping for generic error: %v", other)
	}
}

func TestNewestFile(t *testing.T) {
	dir := t.TempDir()
	since := time.Now().Add(-time.Minute)
	old := filepath.Join(dir, "old.mp4")
	if err := os.WriteFile(old, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(old, since.Add(-time.Hour), since.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := newestFile(dir, since); err == nil {
		t.Error("Expected no new file")
	}
	fresh := filepath.Join(dir, "Clip Title.mp4")
	if err := os.WriteFile(fresh, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.mp4.part"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := newestFile(dir, since)
	if err != nil || got != fresh {
		t.Errorf("newestFile = %s, %v; want %s", got, err, fresh)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	if c.opts.MergeFormat != "mp4" || c.opts.ProgressEvery != 500*time.Millisecond || c.opts.ProbeTimeout == 0 {
		t.Errorf("Unexpected defaults %+v", c.opts)
	}
}
