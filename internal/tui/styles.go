package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tanq16/clipshr/internal/output"
)

var (
	TitleStyle        lipgloss.Style
	BulletStyle       lipgloss.Style
	TextStyle         lipgloss.Style
	DimTextStyle      lipgloss.Style
	SpinnerStyle      lipgloss.Style
	ItemStyle         lipgloss.Style
	SelectedItemStyle lipgloss.Style
	ErrorStyle        lipgloss.Style
	SuccessStyle      lipgloss.Style
)

// applyStyles derives the TUI styles from the active output theme.
func applyStyles() {
	p := output.CurrentPalette()
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	BulletStyle = lipgloss.NewStyle().Foreground(p.Muted).PaddingRight(1)
	TextStyle = lipgloss.NewStyle().Foreground(p.Text)
	DimTextStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SpinnerStyle = lipgloss.NewStyle().Foreground(p.Accent)
	ItemStyle = lipgloss.NewStyle().PaddingLeft(2)
	SelectedItemStyle = lipgloss.NewStyle().Foreground(p.Accent)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
}
