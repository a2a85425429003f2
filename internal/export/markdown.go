package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/tabdedupe/internal/storage"
	"github.com/lotas/tabdedupe/internal/types"
)

// Markdown formats a report as a markdown document.
func Markdown(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tab groups: %s\n", r.Source)
	fmt.Fprintf(&b, "> Exported %s, match mode `%s`, %s view\n", r.GeneratedAt.Format("2006-01-02 15:04"), r.Mode, r.View)
	fmt.Fprintf(&b, "\n%s in %s, %s with duplicates, %s redundant\n",
		plural(r.Stats.TotalTabs, "tab"), plural(r.Stats.TotalWindows, "window"),
		plural(r.Stats.DuplicateGroups, "group"), plural(r.Stats.RedundantTabs, "tab"))

	if len(r.Groups) == 0 {
		if r.View == types.ViewAll {
			b.WriteString("\nNo tabs.\n")
		} else {
			b.WriteString("\nNo duplicate tabs.\n")
		}
		return b.String()
	}

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "\n## %s (%s)\n\n", g.Key, plural(len(g.Tabs), "tab"))
		for i, tab := range g.Tabs {
			title := tab.Title
			if title == "" {
				title = tab.URL
			}
			marker := ""
			if i == 0 && len(g.Tabs) > 1 {
				marker = " (kept)"
			}
			fmt.Fprintf(&b, "- [%s](%s) window %d%s\n", title, tab.URL, tab.WindowID, marker)
		}
	}
	return b.String()
}

// History formats the action log as a markdown list, newest first.
func History(records []storage.ActionRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Recent actions\n\n")
	if len(records) == 0 {
		b.WriteString("Nothing yet.\n")
		return b.String()
	}
	for _, r := range records {
		var parts []string
		if r.Closed > 0 {
			parts = append(parts, "closed "+plural(r.Closed, "tab"))
		}
		if r.Moved > 0 {
			parts = append(parts, fmt.Sprintf("moved %s to window %d", plural(r.Moved, "tab"), r.Destination))
		}
		if r.Failed > 0 {
			parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", r.Operation, strings.Join(parts, ", "), relativeTime(now.Sub(r.CreatedAt)))
	}
	return b.String()
}

func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
