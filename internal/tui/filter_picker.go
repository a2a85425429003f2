package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabdedupe/internal/types"
)

type ModeOption struct {
	Label string
	Mode  types.MatchMode
}

// ModePicker chooses how tab URLs are compared.
type ModePicker struct {
	Options []ModeOption
	Cursor  int
	Width   int
	Height  int
}

var modeOptions = []ModeOption{
	{"Same host", types.MatchHost},
	{"Same host and path", types.MatchHostPath},
	{"Same host and path, ignoring www.", types.MatchHostPathNoWWW},
	{"Same host, path and query", types.MatchHostPathQuery},
}

func NewModePicker(current types.MatchMode) ModePicker {
	cursor := 0
	for i, opt := range modeOptions {
		if opt.Mode == current {
			cursor = i
			break
		}
	}
	return ModePicker{Options: modeOptions, Cursor: cursor}
}

func (m *ModePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ModePicker) MoveDown() {
	if m.Cursor < len(m.Options)-1 {
		m.Cursor++
	}
}

func (m ModePicker) Selected() ModeOption {
	return m.Options[m.Cursor]
}

func modeLabel(mode types.MatchMode) string {
	for _, opt := range modeOptions {
		if opt.Mode == mode {
			return opt.Label
		}
	}
	return string(mode)
}

func (m ModePicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Group tabs by:") + "\n\n")

	for i, opt := range m.Options {
		label := opt.Label
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · esc cancel"))

	return boxStyle.Render(b.String())
}
