package analyzer

import (
	"sort"
	"strings"

	"github.com/lotas/tabdedupe/internal/types"
)

// DefaultInternalPrefixes are URL prefixes of browser-internal pages.
var DefaultInternalPrefixes = []string{"chrome://", "edge://"}

// PageFilter decides which tabs take part in grouping and window counts.
type PageFilter struct {
	InternalPrefixes []string
}

// DefaultFilter returns a filter using DefaultInternalPrefixes.
func DefaultFilter() PageFilter {
	return PageFilter{InternalPrefixes: DefaultInternalPrefixes}
}

// Groupable reports whether tab has a normal URL.
func (f PageFilter) Groupable(tab types.Tab) bool {
	if tab.URL == "" {
		return false
	}
	for _, prefix := range f.InternalPrefixes {
		if strings.HasPrefix(tab.URL, prefix) {
			return false
		}
	}
	return true
}

// Apply returns the groupable tabs in input order.
func (f PageFilter) Apply(tabs []types.Tab) []types.Tab {
	out := make([]types.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if f.Groupable(tab) {
			out = append(out, tab)
		}
	}
	return out
}

// GroupTabs partitions the groupable tabs by canonical key. Groups are
// returned in the order their key was first seen; tabs keep input order.
func GroupTabs(tabs []types.Tab, mode types.MatchMode, filter PageFilter) []types.Group {
	index := make(map[string]int)
	var groups []types.Group
	for _, tab := range tabs {
		if !filter.Groupable(tab) {
			continue
		}
		key := Canonicalize(tab.URL, mode)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, types.Group{Key: key})
		}
		groups[i].Tabs = append(groups[i].Tabs, tab)
	}
	return groups
}

// DuplicatesView returns the groups holding more than one tab, largest first.
// Equal sizes keep their first-seen order.
func DuplicatesView(groups []types.Group) []types.Group {
	var out []types.Group
	for _, g := range groups {
		if len(g.Tabs) > 1 {
			out = append(out, g)
		}
	}
	sortBySize(out)
	return out
}

// AllView returns every group, largest first.
func AllView(groups []types.Group) []types.Group {
	out := make([]types.Group, len(groups))
	copy(out, groups)
	sortBySize(out)
	return out
}

// View dispatches to DuplicatesView or AllView.
func View(groups []types.Group, mode types.ViewMode) []types.Group {
	if mode == types.ViewAll {
		return AllView(groups)
	}
	return DuplicatesView(groups)
}

func sortBySize(groups []types.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Tabs) > len(groups[j].Tabs)
	})
}

// FindGroup returns the group with the given key.
func FindGroup(groups []types.Group, key string) (types.Group, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return types.Group{}, false
}

// FindTab returns the tab with the given ID.
func FindTab(tabs []types.Tab, id int) (types.Tab, bool) {
	for _, t := range tabs {
		if t.ID == id {
			return t, true
		}
	}
	return types.Tab{}, false
}
