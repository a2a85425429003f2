package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabdedupe/internal/types"
)

// BuildWindowSummaries counts groupable tabs per window. The current window
// comes first, the rest follow by ascending window ID. Windows with only
// internal pages are left out.
func BuildWindowSummaries(tabs []types.Tab, currentWindowID int, filter PageFilter) []types.WindowSummary {
	index := make(map[int]int)
	var out []types.WindowSummary
	for _, tab := range tabs {
		if !filter.Groupable(tab) {
			continue
		}
		i, ok := index[tab.WindowID]
		if !ok {
			i = len(out)
			index[tab.WindowID] = i
			out = append(out, types.WindowSummary{
				WindowID:  tab.WindowID,
				IsCurrent: tab.WindowID == currentWindowID,
			})
		}
		out[i].TabCount++
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCurrent != out[j].IsCurrent {
			return out[i].IsCurrent
		}
		return out[i].WindowID < out[j].WindowID
	})
	return out
}

// TabsInWindow returns the groupable tabs of one window in input order.
func TabsInWindow(tabs []types.Tab, windowID int, filter PageFilter) []types.Tab {
	var out []types.Tab
	for _, tab := range tabs {
		if tab.WindowID == windowID && filter.Groupable(tab) {
			out = append(out, tab)
		}
	}
	return out
}

// HostCount is one row of a window's host breakdown.
type HostCount struct {
	Host  string
	Count int
}

// HostBreakdown counts tabs per host name with any "www." prefix removed,
// most common first. Tabs without a host are skipped.
func HostBreakdown(tabs []types.Tab) []HostCount {
	counts := make(map[string]int)
	for _, tab := range tabs {
		u, err := url.Parse(tab.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		counts[strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")]++
	}

	out := make([]HostCount, 0, len(counts))
	for host, n := range counts {
		out = append(out, HostCount{Host: host, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Host < out[j].Host
	})
	return out
}
