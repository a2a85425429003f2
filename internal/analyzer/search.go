package analyzer

import (
	"strings"

	"github.com/lotas/tabdedupe/internal/types"
)

// TabMatches reports whether term occurs in the tab's title or URL, ignoring
// case. An empty term matches everything.
func TabMatches(tab types.Tab, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(tab.Title), term) ||
		strings.Contains(strings.ToLower(tab.URL), term)
}

// FilterGroups keeps the groups with at least one matching tab. The groups
// are returned whole so group actions still cover every tab.
func FilterGroups(groups []types.Group, term string) []types.Group {
	if strings.TrimSpace(term) == "" {
		return groups
	}
	var out []types.Group
	for _, g := range groups {
		for _, tab := range g.Tabs {
			if TabMatches(tab, term) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
