package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func reviewPromptView() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Enjoying tabdedupe?") + "\n\n")
	b.WriteString(normalStyle.Render("You have tidied up your tabs a few times now.") + "\n")
	b.WriteString(normalStyle.Render("A short review helps other people find it.") + "\n\n")
	b.WriteString(normalStyle.Render(keyStyle.Render("y")+" leave a review   "+
		keyStyle.Render("n")+" not now   "+
		keyStyle.Render("N")+" never ask again") + "\n")
	b.WriteString("\n" + hintStyle.Render("The review page opens in your browser."))

	return boxStyle.Render(b.String())
}
