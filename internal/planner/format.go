package planner

import (
	"fmt"
	"strings"

	"github.com/lotas/tabdedupe/internal/types"
)

// Describe returns a one-line summary of what p would do.
func Describe(p types.Plan) string {
	if p.Empty() {
		return "nothing to do"
	}
	var parts []string
	if n := len(p.Close); n > 0 {
		parts = append(parts, fmt.Sprintf("close %s", plural(n, "tab")))
	}
	if n := len(p.Move); n > 0 {
		parts = append(parts, fmt.Sprintf("move %s to window %d", plural(n, "tab"), p.DestinationWindowID))
	}
	return strings.Join(parts, ", ")
}

// FormatDryRun lists the tabs a plan would touch, resolving IDs against
// tabs for titles and URLs.
func FormatDryRun(p types.Plan, tabs []types.Tab) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", p.Operation, Describe(p))

	byID := make(map[int]types.Tab, len(tabs))
	for _, t := range tabs {
		byID[t.ID] = t
	}
	section := func(name string, ids []int) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", name, len(ids))
		for _, id := range ids {
			t, ok := byID[id]
			if !ok {
				fmt.Fprintf(&b, "  #%d\n", id)
				continue
			}
			label := t.Title
			if label == "" {
				label = t.URL
			}
			fmt.Fprintf(&b, "  #%d [w%d] %s\n", id, t.WindowID, label)
		}
	}
	section("Close", p.Close)
	section("Move", p.Move)
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
