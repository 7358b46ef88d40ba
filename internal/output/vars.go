package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the accent colors of one theme.
type Palette struct {
	Name    string
	Text    lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Muted   lipgloss.Color
}

var Palettes = map[string]Palette{
	"light": {
		Name: "Light Mode (Default)", Text: "#333333", Accent: "#4A90E2",
		Success: "#2ECC71", Error: "#E74C3C", Warning: "#E67E22", Muted: "250",
	},
	"dark": {
		Name: "Dark Mode (Slate)", Text: "#EAEAEA", Accent: "#5DADE2",
		Success: "#27AE60", Error: "#E74C3C", Warning: "#F39C12", Muted: "240",
	},
	"calm_green": {
		Name: "Calm Green", Text: "#474D47", Accent: "#4CAF50",
		Success: "#66BB6A", Error: "#D32F2F", Warning: "#F4A261", Muted: "250",
	},
	"deep_ocean": {
		Name: "Deep Ocean", Text: "#CFD8DC", Accent: "#00BCD4",
		Success: "#00E676", Error: "#FF5252", Warning: "#FFA94D", Muted: "240",
	},
	"corporate": {
		Name: "Corporate Grey", Text: "#444444", Accent: "#9C27B0",
		Success: "#8BC34A", Error: "#F44336", Warning: "#FFBE0B", Muted: "250",
	},
}

var (
	currentTheme = "light"

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	pendingStyle lipgloss.Style
	infoStyle    lipgloss.Style
	debugStyle   lipgloss.Style
	detailStyle  lipgloss.Style
	streamStyle  lipgloss.Style
	headerStyle  lipgloss.Style
)

func init() {
	ApplyTheme(currentTheme)
}

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"pending": "◉",
	"info":    "ℹ",
	"arrow":   "→",
	"bullet":  "•",
	"dot":     "·",
	"hline":   "━",
}

// ApplyTheme recolors all styles. Unknown names fall back to light.
func ApplyTheme(name string) {
	p, ok := Palettes[name]
	if !ok {
		name = "light"
		p = Palettes[name]
	}
	currentTheme = name
	successStyle = lipgloss.NewStyle().Foreground(p.Success)
	errorStyle = lipgloss.NewStyle().Foreground(p.Error)
	warningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	pendingStyle = lipgloss.NewStyle().Foreground(p.Accent)
	infoStyle = lipgloss.NewStyle().Foreground(p.Accent)
	debugStyle = lipgloss.NewStyle().Foreground(p.Muted)
	detailStyle = lipgloss.NewStyle().Foreground(p.Text)
	streamStyle = lipgloss.NewStyle().Foreground(p.Muted)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
}

func CurrentTheme() string {
	return currentTheme
}

func CurrentPalette() Palette {
	return Palettes[currentTheme]
}

func PrintSuccess(text string) {
	fmt.Println(successStyle.Render(text))
}
func PrintError(text string) {
	fmt.Println(errorStyle.Render(text))
}
func PrintWarning(text string) {
	fmt.Println(warningStyle.Render(text))
}
func PrintPending(text string) {
	fmt.Println(pendingStyle.Render(text))
}
func PrintInfo(text string) {
	fmt.Println(infoStyle.Render(text))
}
func PrintDetail(text string) {
	fmt.Println(detailStyle.Render(text))
}
func PrintHeader(text string) {
	fmt.Println(headerStyle.Render(text))
}
func FSuccess(text string) string {
	return successStyle.Render(text)
}
func FError(text string) string {
	return errorStyle.Render(text)
}
func FWarning(text string) string {
	return warningStyle.Render(text)
}
func FPending(text string) string {
	return pendingStyle.Render(text)
}
func FInfo(text string) string {
	return infoStyle.Render(text)
}
func FDebug(text string) string {
	return debugStyle.Render(text)
}
func FDetail(text string) string {
	return detailStyle.Render(text)
}
func FHeader(text string) string {
	return headerStyle.Render(text)
}

// PrintKeyValue prints an aligned "key: value" line.
func PrintKeyValue(key, value string) {
	fmt.Printf("  %s %s\n", headerStyle.Render(fmt.Sprintf("%-10s", key+":")), detailStyle.Render(value))
}
