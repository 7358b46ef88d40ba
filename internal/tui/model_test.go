package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tanq16/clipshr/internal/app"
	"github.com/tanq16/clipshr/internal/config"
	"github.com/tanq16/clipshr/internal/history"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	for _, key := range []string{config.EnvHome, config.EnvMediaFolder, config.EnvProxy} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	state, err := app.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	orch := orchestrator.New(nil, nil, func(ctx context.Context) error { return nil })
	return newModel(context.Background(), state, orch)
}

func fetchedEvent() orchestrator.FetchedEvent {
	info := &media.Info{Title: "A Clip", Uploader: "someone", UploadDate: "20240101", Ext: "mp4"}
	return orchestrator.FetchedEvent{
		TaskID:  "task-1",
		URL:     "https://example.com/watch?v=x",
		Info:    info,
		Formats: media.BuildFormatList([]media.RawFormat{{FormatID: "18", VCodec: "avc1", ACodec: "mp4a", Height: 360, Filesize: 100}}),
	}
}

func TestFetchedEventShowsFormats(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(eventMsg{event: fetchedEvent()})
	m = next.(model)
	if m.mode != modeSelect {
		t.Fatalf("Expected select mode, got %v", m.mode)
	}
	if got := len(m.formats.Items()); got != 2 {
		t.Errorf("Expected 2 format items, got %d", got)
	}
	view := m.View()
	for _, want := range []string{"A Clip", "someone", "2024-01-01", "BEST QUALITY"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestSelectFormatOpensTrim(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(eventMsg{event: fetchedEvent()})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.mode != modeTrim || m.selected == nil || m.selected.ID != media.BestFormatID {
		t.Errorf("Expected trim mode with best format selected, got mode %v, %+v", m.mode, m.selected)
	}
}

func TestFailedFetchReturnsToInput(t *testing.T) {
	m := newTestModel(t)
	m.mode = modeFetching
	next, _ := m.Update(eventMsg{event: orchestrator.FailedEvent{Phase: orchestrator.PhaseFetch, Err: media.ErrEmptyURL}})
	m = next.(model)
	if m.mode != modeInput || m.errorMsg == "" {
		t.Errorf("Expected input mode with error, got %v / %q", m.mode, m.errorMsg)
	}
}

func TestDoneEventRecordsHistory(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(eventMsg{event: fetchedEvent()})
	m = next.(model)
	f := m.formats.Items()[1].(formatItem).format
	m.selected = &f
	m.mode = modeDownloading
	result := orchestrator.Result{
		Path:     filepath.Join(m.state.MediaFolder(), "A Clip.mp4"),
		Filename: "A Clip.mp4",
		Size:     "100 B",
		FormatID: "18",
	}
	next, _ = m.Update(eventMsg{event: orchestrator.DoneEvent{TaskID: "task-2", Result: result}})
	m = next.(model)
	if m.mode != modeDone || m.percent != 100 {
		t.Errorf("Expected done mode at 100%%, got %v / %.0f", m.mode, m.percent)
	}
	records := m.state.Ledger.LoadAll()
	if len(records) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(records))
	}
	want := history.Record{
		Timestamp:   records[0].Timestamp,
		OriginalURL: "https://example.com/watch?v=x",
		Title:       "A Clip",
		Format:      "360p (Video + Audio)",
		Filename:    "A Clip.mp4",
		Size:        "100 B",
	}
	if records[0] != want {
		t.Errorf("Unexpected record %+v", records[0])
	}
	if !strings.Contains(m.View(), "Download complete") {
		t.Error("Done view missing completion text")
	}
}

func TestEmptyURLRejected(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.mode != modeInput || m.errorMsg == "" {
		t.Errorf("Expected synchronous error, got mode %v / %q", m.mode, m.errorMsg)
	}
}

func TestHistoryView(t *testing.T) {
	m := newTestModel(t)
	if err := m.state.Ledger.Append(history.Record{Timestamp: "2024-01-01 10:00:00", OriginalURL: "https://x", Title: "Saved clip", Filename: "saved.mp4"}); err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.mode != modeHistory || len(m.history.Items()) != 1 {
		t.Fatalf("Expected history with one item, got %v / %d", m.mode, len(m.history.Items()))
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = next.(model)
	if len(m.state.Ledger.LoadAll()) != 0 || len(m.history.Items()) != 0 {
		t.Error("Expected entry removed from history")
	}
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(model)
}

func historyWithFile(t *testing.T) (model, string) {
	t.Helper()
	m := newTestModel(t)
	path := filepath.Join(m.state.MediaFolder(), "saved.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.state.Ledger.Append(history.Record{Timestamp: "2024-01-01 10:00:00", OriginalURL: "https://x", Title: "Saved clip", Filename: "saved.mp4"}); err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, next.(model), "c")
	if m.mode != modeConfirmClear {
		t.Fatalf("Expected confirmation mode, got %v", m.mode)
	}
	return m, path
}

func TestHistoryClearWrongPhrase(t *testing.T) {
	m, path := historyWithFile(t)
	m = typeText(t, m, "delete all")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.mode != modeHistory || !strings.Contains(m.notice, "did not match") {
		t.Errorf("Expected mismatch notice in history mode, got %v / %q", m.mode, m.notice)
	}
	if len(m.state.Ledger.LoadAll()) != 1 {
		t.Error("Ledger changed on mismatched phrase")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("File removed on mismatched phrase: %v", err)
	}
}

func TestHistoryClearConfirmed(t *testing.T) {
	m, path := historyWithFile(t)
	m = typeText(t, m, history.ConfirmationPhrase)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.mode != modeHistory || m.notice != "Deleted 1 files, history cleared" {
		t.Errorf("Unexpected outcome %v / %q", m.mode, m.notice)
	}
	if len(m.state.Ledger.LoadAll()) != 0 || len(m.history.Items()) != 0 {
		t.Error("Expected empty history")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file deleted, got %v", err)
	}
}

func TestHistoryClearCancel(t *testing.T) {
	m, _ := historyWithFile(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	if m.mode != modeHistory || len(m.state.Ledger.LoadAll()) != 1 {
		t.Errorf("Expected untouched history, got mode %v", m.mode)
	}
}

func TestQuitStoresWindowSize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 132, Height: 40})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !next.(model).quitting {
		t.Fatal("Expected quit")
	}
	stored := config.Load(m.state.ConfigPath)
	if stored.WindowWidth != 132 || stored.WindowHeight != 40 {
		t.Errorf("Expected 132x40 stored, got %dx%d", stored.WindowWidth, stored.WindowHeight)
	}
}

func TestQuitWithoutResizeKeepsConfig(t *testing.T) {
	m := newTestModel(t)
	m.quit()
	stored := config.Load(m.state.ConfigPath)
	if stored.WindowWidth != config.DefaultWindowWidth || stored.WindowHeight != config.DefaultWindowHeight {
		t.Errorf("Window size changed without a resize: %dx%d", stored.WindowWidth, stored.WindowHeight)
	}
}
