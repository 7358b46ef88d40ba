package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/tanq16/clipshr/internal/app"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
)

type mode int

const (
	modeInput mode = iota
	modeFetching
	modeSelect
	modeTrim
	modeDownloading
	modeDone
	modeHistory
	modeConfirmClear
)

type eventMsg struct {
	event orchestrator.Event
}

type statusMsg string

type formatItem struct {
	format media.Format
}

type historyItem struct {
	index    int
	title    string
	subtitle string
}

type formatDelegate struct{}

type historyDelegate struct{}

type model struct {
	ctx   context.Context
	state *app.State
	orch  *orchestrator.Orchestrator

	mode      mode
	url       textinput.Model
	trimStart textinput.Model
	trimEnd   textinput.Model
	confirm   textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	formats   list.Model
	history   list.Model

	fetched  *orchestrator.FetchedEvent
	selected *media.Format
	percent  float64
	status   string
	result   *orchestrator.Result
	errorMsg string
	notice   string
	width    int
	height   int
	resized  bool
	quitting bool
}
