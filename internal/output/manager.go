package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// TaskOutput is the live display state of one fetch or download.
type TaskOutput struct {
	ID          int
	Label       string
	Status      string
	Message     string
	StreamLines []string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	Label string
	Error error
	Time  time.Time
}

// Manager redraws the task list in place on a ticker until stopped.
type Manager struct {
	outputs     map[int]*TaskOutput
	mutex       sync.RWMutex
	numLines    int
	maxStreams  int
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	taskCount   int
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		outputs:     make(map[int]*TaskOutput),
		maxStreams:  5,
		doneCh:      make(chan struct{}),
		displayTick: 200 * time.Millisecond,
	}
}

func (m *Manager) Register(label string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.taskCount++
	m.outputs[m.taskCount] = &TaskOutput{
		ID:          m.taskCount,
		Label:       label,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	return m.taskCount
}

func (m *Manager) update(id int, fn func(*TaskOutput)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		fn(info)
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.update(id, func(info *TaskOutput) { info.Message = message })
}

func (m *Manager) SetStatus(id int, status string) {
	m.update(id, func(info *TaskOutput) { info.Status = status })
}

func (m *Manager) AddStreamLine(id int, line string) {
	m.update(id, func(info *TaskOutput) {
		info.StreamLines = append(info.StreamLines, wrapText(line, 2+4)...)
		if len(info.StreamLines) > m.maxStreams {
			info.StreamLines = info.StreamLines[len(info.StreamLines)-m.maxStreams:]
		}
	})
}

// SetProgress replaces the stream with a single progress bar line.
func (m *Manager) SetProgress(id int, percent float64, text string) {
	m.update(id, func(info *TaskOutput) {
		display := fmt.Sprintf("%s%s", debugStyle.Render(ProgressBar(percent, 30)), debugStyle.Render(text))
		info.StreamLines = []string{display}
	})
}

func (m *Manager) Complete(id int, message string) {
	m.update(id, func(info *TaskOutput) {
		info.StreamLines = nil
		if message == "" {
			message = fmt.Sprintf("Completed %s", info.Label)
		}
		info.Message = message
		info.Complete = true
		info.Status = "success"
	})
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Complete = true
		info.Status = "error"
		info.Error = err
		info.Message = fmt.Sprintf("Failed %s", info.Label)
		info.StreamLines = nil
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{Label: info.Label, Error: err, Time: time.Now()})
	}
}

func (m *Manager) Errors() []ErrorReport {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]ErrorReport(nil), m.errors...)
}

func statusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styledMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) sortedTasks() []*TaskOutput {
	tasks := make([]*TaskOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		tasks = append(tasks, info)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// render writes the current view, at most maxLines lines.
func (m *Manager) render(maxLines int) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var lines []string
	for _, info := range m.sortedTasks() {
		if info.Status == "pending" && info.Message == "" {
			lines = append(lines, fmt.Sprintf("  %s %s", statusIndicator(info.Status), pendingStyle.Render("Waiting... "+info.Label)))
			continue
		}
		elapsed := time.Since(info.StartTime).Round(time.Second)
		if info.Complete {
			elapsed = info.LastUpdated.Sub(info.StartTime).Round(time.Second)
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s", statusIndicator(info.Status), debugStyle.Render(elapsed.String()), styledMessage(info.Status, info.Message)))
		for _, line := range info.StreamLines {
			lines = append(lines, "      "+streamStyle.Render(line))
		}
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}

func (m *Manager) updateDisplay() {
	lines := m.render(terminalHeight() - 3)
	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	m.numLines = len(lines)
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				m.ShowSummary()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var success, failures int
	for _, info := range m.outputs {
		switch info.Status {
		case "success":
			success++
		case "error":
			failures++
		}
	}
	if len(m.outputs) > 1 {
		fmt.Println()
		fmt.Println("  " + successStyle.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
		if failures > 0 {
			fmt.Println("  " + errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
		}
	}
	if len(m.errors) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  " + errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Printf("    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(report.Label))
		fmt.Printf("      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", report.Error)))
	}
	fmt.Println()
}

// Indent is a convenience for nested detail lines.
func Indent(text string, n int) string {
	return strings.Repeat(" ", n) + text
}
