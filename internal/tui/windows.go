package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/types"
)

// maxHostRows caps the host breakdown shown under the selected window.
const maxHostRows = 8

// WindowList is the window overview pane.
type WindowList struct {
	Windows  []types.WindowSummary
	Hosts    map[int][]analyzer.HostCount // window ID -> breakdown, filled lazily
	Expanded bool
	Focused  bool
	Cursor   int
	Width    int
	Height   int
}

// SetWindows replaces the summaries and drops cached host breakdowns, which
// are stale after a refresh.
func (w *WindowList) SetWindows(windows []types.WindowSummary) {
	w.Windows = windows
	w.Hosts = make(map[int][]analyzer.HostCount)
	if w.Cursor >= len(windows) {
		w.Cursor = len(windows) - 1
	}
	if w.Cursor < 0 {
		w.Cursor = 0
	}
}

// Selected returns the window under the cursor.
func (w WindowList) Selected() (types.WindowSummary, bool) {
	if w.Cursor < 0 || w.Cursor >= len(w.Windows) {
		return types.WindowSummary{}, false
	}
	return w.Windows[w.Cursor], true
}

func (w *WindowList) MoveUp() {
	if w.Cursor > 0 {
		w.Cursor--
	}
}

func (w *WindowList) MoveDown() {
	if w.Cursor < len(w.Windows)-1 {
		w.Cursor++
	}
}

func (w WindowList) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	currentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	title := fmt.Sprintf("Windows (%d)", len(w.Windows))
	if !w.Expanded {
		return titleStyle.Render("▶ "+title) + "\n" + dimStyle.Render("w to expand")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("▼ " + title))
	if len(w.Windows) == 0 {
		b.WriteString("\n" + dimStyle.Render("No windows."))
		return b.String()
	}
	for i, win := range w.Windows {
		line := fmt.Sprintf("Window %d · %s", win.WindowID, pluralTabs(win.TabCount))
		if win.IsCurrent {
			line += " " + currentStyle.Render("(current)")
		}
		if w.Focused && i == w.Cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}

	sel, ok := w.Selected()
	if !ok {
		return b.String()
	}
	hosts, loaded := w.Hosts[sel.WindowID]
	b.WriteString("\n\n" + titleStyle.Render(fmt.Sprintf("Hosts in window %d", sel.WindowID)))
	switch {
	case !loaded:
		b.WriteString("\n" + dimStyle.Render("loading…"))
	case len(hosts) == 0:
		b.WriteString("\n" + dimStyle.Render("No tabs."))
	default:
		for i, h := range hosts {
			if i == maxHostRows {
				b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("+%d more", len(hosts)-maxHostRows)))
				break
			}
			b.WriteString(fmt.Sprintf("\n%3d  %s", h.Count, h.Host))
		}
	}
	return b.String()
}

func pluralTabs(n int) string {
	if n == 1 {
		return "1 tab"
	}
	return fmt.Sprintf("%d tabs", n)
}
