package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabdedupe/internal/types"
)

// TreeWidthPct is the percentage of terminal width used for the group list.
const TreeWidthPct = 60

var viewNames = []struct {
	mode types.ViewMode
	name string
}{
	{types.ViewDuplicates, "Duplicates"},
	{types.ViewAll, "All tabs"},
}

func renderNavbar(active types.ViewMode, source string, stats types.Stats, mode types.MatchMode, width int) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sourceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	counts := map[types.ViewMode]int{
		types.ViewDuplicates: stats.DuplicateGroups,
		types.ViewAll:        stats.Groups,
	}

	var tabs string
	for i, v := range viewNames {
		if i > 0 {
			tabs += inactiveStyle.Render(" │ ")
		}
		countSuffix := fmt.Sprintf(" (%d)", counts[v.mode])
		if v.mode == active {
			tabs += activeStyle.Render(v.name + countSuffix)
		} else {
			tabs += inactiveStyle.Render(v.name) + countStyle.Render(countSuffix)
		}
	}

	left := " " + tabs
	summary := fmt.Sprintf("%d tabs · %d windows · %d redundant · %s",
		stats.TotalTabs, stats.TotalWindows, stats.RedundantTabs, modeLabel(mode))
	left += "   " + statsStyle.Render(summary)

	right := sourceStyle.Render(source)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap)

	return left + padding.Render("") + right + " "
}
