package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func (i formatItem) FilterValue() string { return i.format.Quality }

func (d formatDelegate) Height() int                             { return 2 }
func (d formatDelegate) Spacing() int                            { return 0 }
func (d formatDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d formatDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(formatItem)
	if !ok {
		return
	}
	details := DimTextStyle.Render(fmt.Sprintf("  %s %s %s %s %s", i.format.ID, "·", i.format.Ext, "·", i.format.Size))
	fn := ItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}
	fmt.Fprintf(w, "%s\n%s\n", fn(i.format.Quality), details)
}

func (i historyItem) FilterValue() string { return i.title }

func (d historyDelegate) Height() int                             { return 2 }
func (d historyDelegate) Spacing() int                            { return 0 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d historyDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(historyItem)
	if !ok {
		return
	}
	fn := ItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}
	fmt.Fprintf(w, "%s\n%s\n", fn(i.title), DimTextStyle.Render("  "+i.subtitle))
}
