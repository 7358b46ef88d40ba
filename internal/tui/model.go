package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/app"
	"github.com/tanq16/clipshr/internal/history"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/utils"
)

func newModel(ctx context.Context, state *app.State, orch *orchestrator.Orchestrator) model {
	applyStyles()
	url := textinput.New()
	url.Placeholder = "Paste a video, audio or image link"
	url.CharLimit = 2048
	url.Width = 64
	url.Focus()

	trimStart := textinput.New()
	trimStart.Placeholder = media.TrimZero
	trimStart.CharLimit = 8
	trimStart.Width = 10
	trimStart.SetValue(media.TrimZero)

	trimEnd := textinput.New()
	trimEnd.Placeholder = "HH:MM:SS"
	trimEnd.CharLimit = 8
	trimEnd.Width = 10

	confirm := textinput.New()
	confirm.Placeholder = history.ConfirmationPhrase
	confirm.CharLimit = 32
	confirm.Width = 16

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return model{
		ctx:       ctx,
		state:     state,
		orch:      orch,
		mode:      modeInput,
		url:       url,
		trimStart: trimStart,
		trimEnd:   trimEnd,
		confirm:   confirm,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		width:     80,
		height:    24,
	}
}

// waitForEvent blocks on the orchestrator channel for the next event.
func waitForEvent(ch <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-ch}
	}
}

func newList(items []list.Item, delegate list.ItemDelegate, width, height int, extra ...key.Binding) list.Model {
	l := list.New(items, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.SetShowPagination(false)
	l.AdditionalShortHelpKeys = func() []key.Binding { return extra }
	return l
}

func (m model) listHeight() int {
	return max(m.height-10, 6)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resized = true
		if m.fetched != nil {
			m.formats.SetSize(msg.Width, m.listHeight())
		}
		if m.mode == modeHistory {
			m.history.SetSize(msg.Width, m.listHeight())
		}
		m.progress.Width = min(max(msg.Width-10, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)

	case eventMsg:
		return m.handleEvent(msg.event)

	case statusMsg:
		m.notice = string(msg)
		return m, nil

	case spinner.TickMsg:
		if m.mode == modeFetching || m.mode == modeDownloading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeInput:
		switch msg.String() {
		case "esc":
			return m.quit()
		case "tab":
			m.openHistory()
			return m, nil
		case "enter":
			return m.startFetch()
		}
		var cmd tea.Cmd
		m.url, cmd = m.url.Update(msg)
		return m, cmd

	case modeSelect:
		switch msg.String() {
		case "esc":
			m.mode = modeInput
			return m, nil
		case "enter":
			item, ok := m.formats.SelectedItem().(formatItem)
			if !ok {
				return m, nil
			}
			m.selected = &item.format
			if m.fetched.IsImage {
				return m.startDownload()
			}
			m.mode = modeTrim
			m.errorMsg = ""
			m.trimStart.Focus()
			m.trimEnd.Blur()
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.formats, cmd = m.formats.Update(msg)
		return m, cmd

	case modeTrim:
		switch msg.String() {
		case "esc":
			m.mode = modeSelect
			return m, nil
		case "tab", "shift+tab":
			if m.trimStart.Focused() {
				m.trimStart.Blur()
				m.trimEnd.Focus()
			} else {
				m.trimEnd.Blur()
				m.trimStart.Focus()
			}
			return m, textinput.Blink
		case "enter":
			return m.startDownload()
		}
		var cmd tea.Cmd
		if m.trimStart.Focused() {
			m.trimStart, cmd = m.trimStart.Update(msg)
		} else {
			m.trimEnd, cmd = m.trimEnd.Update(msg)
		}
		return m, cmd

	case modeDone:
		switch msg.String() {
		case "q", "esc":
			return m.quit()
		case "n":
			m.reset()
			return m, textinput.Blink
		case "o":
			return m, openCmd(m.result.Path)
		case "f":
			return m, openCmd(m.state.MediaFolder())
		}
		return m, nil

	case modeHistory:
		switch msg.String() {
		case "esc", "tab":
			m.mode = modeInput
			return m, nil
		case "o":
			if item, ok := m.history.SelectedItem().(historyItem); ok {
				path, err := m.state.ResolveHistoryPath(item.index)
				if err != nil {
					m.notice = err.Error()
					return m, nil
				}
				return m, openCmd(path)
			}
			return m, nil
		case "d":
			if item, ok := m.history.SelectedItem().(historyItem); ok {
				if _, err := m.state.Ledger.Delete(item.index); err != nil {
					m.notice = err.Error()
				} else {
					m.notice = "Removed from history (file kept)"
				}
				m.openHistory()
			}
			return m, nil
		case "c":
			m.notice = ""
			m.errorMsg = ""
			m.confirm.SetValue("")
			m.confirm.Focus()
			m.mode = modeConfirmClear
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case modeConfirmClear:
		switch msg.String() {
		case "esc":
			m.confirm.Blur()
			m.openHistory()
			return m, nil
		case "enter":
			return m.clearHistory()
		}
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	return m, nil
}

// clearHistory runs the confirmed clear-all and reports the outcome in the
// history view.
func (m model) clearHistory() (tea.Model, tea.Cmd) {
	m.confirm.Blur()
	report, err := m.state.ClearHistory(m.confirm.Value())
	switch {
	case errors.Is(err, history.ErrConfirmationMismatch):
		m.notice = "Confirmation did not match, nothing was deleted"
	case err != nil:
		m.errorMsg = err.Error()
	default:
		notice := fmt.Sprintf("Deleted %d files, history cleared", len(report.Deleted))
		if report.HasFailures() {
			failed := make([]string, 0, len(report.Failed))
			for name, ferr := range report.Failed {
				failed = append(failed, fmt.Sprintf("%s (%v)", name, ferr))
			}
			sort.Strings(failed)
			notice += ". Could not delete: " + strings.Join(failed, ", ")
		}
		m.notice = notice
	}
	m.openHistory()
	return m, nil
}

// quit stores the last terminal size when it changed, then exits.
func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	cfg := m.state.Config
	if m.resized && (cfg.WindowWidth != m.width || cfg.WindowHeight != m.height) {
		if err := cfg.SetWindowSize(m.width, m.height); err == nil {
			if err := m.state.Flush(); err != nil {
				log.Warn().Str("op", "tui/quit").Err(err).Msg("Could not save window size")
			}
		}
	}
	return m, tea.Quit
}

func openCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if err := utils.OpenPath(path); err != nil {
			return statusMsg(err.Error())
		}
		return statusMsg("Opened " + path)
	}
}

func (m *model) reset() {
	m.mode = modeInput
	m.fetched = nil
	m.selected = nil
	m.result = nil
	m.percent = 0
	m.status = ""
	m.errorMsg = ""
	m.notice = ""
	m.url.SetValue("")
	m.url.Focus()
	m.trimStart.SetValue(media.TrimZero)
	m.trimEnd.SetValue("")
}

func (m *model) openHistory() {
	records := m.state.Ledger.Display()
	items := make([]list.Item, len(records))
	for i, r := range records {
		kind := "media"
		if r.IsImage {
			kind = "image"
		}
		items[i] = historyItem{
			index:    i,
			title:    r.Title,
			subtitle: fmt.Sprintf("%s · %s · %s · %s", r.Timestamp, kind, r.Format, r.Size),
		}
	}
	m.history = newList(items, historyDelegate{}, m.width, m.listHeight(),
		key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete entry")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
	)
	m.mode = modeHistory
}

func (m model) startFetch() (tea.Model, tea.Cmd) {
	m.errorMsg = ""
	m.notice = ""
	if _, err := m.orch.StartFetch(m.ctx, m.url.Value()); err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.mode = modeFetching
	m.status = "Fetching details..."
	return m, tea.Batch(m.spinner.Tick, waitForEvent(m.orch.Events()))
}

func (m model) startDownload() (tea.Model, tea.Cmd) {
	m.errorMsg = ""
	req := orchestrator.DownloadRequest{
		URL:       m.fetched.URL,
		FormatID:  m.selected.ID,
		OutputDir: m.state.MediaFolder(),
		Embed:     m.state.Config.DefaultCompress,
	}
	if m.fetched.IsImage {
		req.ImageName = m.fetched.Image.Filename
	} else {
		req.TrimStart = m.trimStart.Value()
		req.TrimEnd = m.trimEnd.Value()
	}
	if _, err := m.orch.StartDownload(m.ctx, req); err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.mode = modeDownloading
	m.percent = 0
	m.status = "Starting download..."
	return m, tea.Batch(m.spinner.Tick, waitForEvent(m.orch.Events()))
}

func (m model) handleEvent(event orchestrator.Event) (tea.Model, tea.Cmd) {
	switch ev := event.(type) {
	case orchestrator.ProgressEvent:
		m.percent = ev.Percent
		m.status = ev.Status
		return m, waitForEvent(m.orch.Events())

	case orchestrator.FetchedEvent:
		m.fetched = &ev
		all := ev.Formats.All()
		items := make([]list.Item, len(all))
		for i, f := range all {
			items[i] = formatItem{format: f}
		}
		m.formats = newList(items, formatDelegate{}, m.width, m.listHeight())
		m.mode = modeSelect
		return m, nil

	case orchestrator.DoneEvent:
		m.percent = 100
		m.result = &ev.Result
		label := ""
		if m.selected != nil {
			label = m.selected.Quality
		}
		if _, err := m.state.RecordDownload(m.fetched.URL, m.fetched.Title(), label, ev.Result); err != nil {
			log.Warn().Str("op", "tui/handleEvent").Err(err).Msg("Could not record download")
			m.notice = err.Error()
		}
		m.mode = modeDone
		return m, nil

	case orchestrator.FailedEvent:
		m.errorMsg = ev.Err.Error()
		if ev.Phase == orchestrator.PhaseFetch {
			m.mode = modeInput
		} else {
			m.mode = modeSelect
		}
		return m, nil
	}
	return m, nil
}

func (m model) header() string {
	return BulletStyle.Render("┌") + TitleStyle.Render("clipshr") + DimTextStyle.Render("  "+m.state.MediaFolder()) + "\n"
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header())
	switch m.mode {
	case modeInput:
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("URL ") + m.url.View() + "\n")
		b.WriteString(DimTextStyle.Render("  enter fetch · tab history · esc quit") + "\n")
	case modeFetching:
		b.WriteString(BulletStyle.Render("├") + m.spinner.View() + TextStyle.Render(m.status) + "\n")
	case modeSelect:
		b.WriteString(m.previewView())
		b.WriteString(m.formats.View() + "\n")
	case modeTrim:
		b.WriteString(m.previewView())
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("Format ") + SelectedItemStyle.Render(m.selected.Quality) + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("Start  ") + m.trimStart.View() + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("End    ") + m.trimEnd.View() + "\n")
		b.WriteString(DimTextStyle.Render("  leave end empty for the full media · enter download · esc back") + "\n")
	case modeDownloading:
		b.WriteString(BulletStyle.Render("├") + m.spinner.View() + TextStyle.Render(m.fetched.Title()) + "\n")
		b.WriteString("  " + m.progress.ViewAs(m.percent/100) + "\n")
		b.WriteString(DimTextStyle.Render("  "+m.status) + "\n")
	case modeDone:
		b.WriteString(BulletStyle.Render("├") + SuccessStyle.Render("Download complete") + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("File: "+m.result.Filename) + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("Size: "+m.result.Size) + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render("Location: "+filepath.Dir(m.result.Path)) + "\n")
		b.WriteString(DimTextStyle.Render("  o open file · f open folder · n new download · q quit") + "\n")
	case modeHistory:
		if len(m.history.Items()) == 0 {
			b.WriteString(BulletStyle.Render("├") + DimTextStyle.Render("No downloads yet") + "\n")
		} else {
			b.WriteString(m.history.View() + "\n")
		}
		b.WriteString(DimTextStyle.Render("  esc back") + "\n")
	case modeConfirmClear:
		b.WriteString(BulletStyle.Render("├") + ErrorStyle.Render("This deletes every file listed in history from "+m.state.MediaFolder()) + "\n")
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render(fmt.Sprintf("Type %q to confirm ", history.ConfirmationPhrase)) + m.confirm.View() + "\n")
		b.WriteString(DimTextStyle.Render("  enter confirm · esc cancel") + "\n")
	}
	if m.errorMsg != "" {
		b.WriteString(BulletStyle.Render("└") + ErrorStyle.Render(m.errorMsg) + "\n")
	} else if m.notice != "" {
		b.WriteString(BulletStyle.Render("└") + DimTextStyle.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m model) previewView() string {
	if m.fetched == nil {
		return ""
	}
	var lines []string
	if m.fetched.IsImage && m.fetched.Image != nil {
		img := m.fetched.Image
		lines = []string{
			"Title  " + img.Title,
			"Source " + img.Host,
			"Type   " + img.TypeLabel(),
		}
	} else if m.fetched.Info != nil {
		info := m.fetched.Info
		lines = []string{
			"Title  " + info.Title,
			"Source " + info.Source(),
			"Date   " + info.Date(),
			"Type   " + info.TypeLabel(),
		}
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(BulletStyle.Render("├") + TextStyle.Render(line) + "\n")
	}
	return b.String()
}

// Run starts the interactive front-end and blocks until it exits.
func Run(ctx context.Context, state *app.State, orch *orchestrator.Orchestrator) error {
	p := tea.NewProgram(newModel(ctx, state, orch))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interactive mode: %v", err)
	}
	return nil
}
