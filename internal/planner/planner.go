// Package planner turns groups and window inventories into host mutation
// plans. Every function is pure; nothing here talks to the browser.
package planner

import (
	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/types"
)

// KeepFirst closes every tab of g except the first.
func KeepFirst(g types.Group) types.Plan {
	p := types.Plan{Operation: types.OpKeepFirst}
	if len(g.Tabs) < 2 {
		return p
	}
	p.Close = uniqueIDs(g.Tabs[1:])
	return p
}

// KeepOnly closes every tab of g except tabID. A tabID outside the group
// yields an empty plan rather than closing the whole group.
func KeepOnly(g types.Group, tabID int) types.Plan {
	p := types.Plan{Operation: types.OpKeepOnly}
	if _, ok := analyzer.FindTab(g.Tabs, tabID); !ok {
		return p
	}
	var rest []types.Tab
	for _, t := range g.Tabs {
		if t.ID != tabID {
			rest = append(rest, t)
		}
	}
	p.Close = uniqueIDs(rest)
	return p
}

// CloseGroup closes every tab of g.
func CloseGroup(g types.Group) types.Plan {
	return types.Plan{Operation: types.OpCloseGroup, Close: uniqueIDs(g.Tabs)}
}

// CloseTab closes a single tab.
func CloseTab(tabID int) types.Plan {
	return types.Plan{Operation: types.OpCloseTab, Close: []int{tabID}}
}

// ConsolidateGroup moves the tabs of g that are not already in windowID
// into it.
func ConsolidateGroup(g types.Group, windowID int) types.Plan {
	p := types.Plan{Operation: types.OpConsolidateGroup, DestinationWindowID: windowID}
	var move []types.Tab
	for _, t := range g.Tabs {
		if t.WindowID != windowID {
			move = append(move, t)
		}
	}
	p.Move = uniqueIDs(move)
	return p
}

// ConsolidateDuplicates closes all but the first tab of every group with
// more than one tab.
func ConsolidateDuplicates(groups []types.Group) types.Plan {
	p := types.Plan{Operation: types.OpConsolidateDuplicates}
	var closeTabs []types.Tab
	for _, g := range groups {
		if len(g.Tabs) > 1 {
			closeTabs = append(closeTabs, g.Tabs[1:]...)
		}
	}
	p.Close = uniqueIDs(closeTabs)
	return p
}

// ConsolidateSingleTabWindows moves the only tab of every window other than
// target that holds exactly one groupable tab. tabs must already be
// filtered to groupable pages.
func ConsolidateSingleTabWindows(summaries []types.WindowSummary, tabs []types.Tab, target int) types.Plan {
	p := types.Plan{Operation: types.OpConsolidateSingleWindows, DestinationWindowID: target}
	single := make(map[int]bool)
	for _, w := range summaries {
		if w.WindowID != target && w.TabCount == 1 {
			single[w.WindowID] = true
		}
	}

	var move []types.Tab
	for _, t := range tabs {
		if single[t.WindowID] {
			move = append(move, t)
			// Guard against a summary that disagrees with tabs.
			delete(single, t.WindowID)
		}
	}
	p.Move = uniqueIDs(move)
	return p
}

// ConsolidateUnique moves every tab that has no duplicate and lives outside
// target.
func ConsolidateUnique(groups []types.Group, target int) types.Plan {
	p := types.Plan{Operation: types.OpConsolidateUnique, DestinationWindowID: target}
	var move []types.Tab
	for _, g := range groups {
		if len(g.Tabs) == 1 && g.Tabs[0].WindowID != target {
			move = append(move, g.Tabs[0])
		}
	}
	p.Move = uniqueIDs(move)
	return p
}

// MergeWindow moves every tab of source into target. tabs must already be
// filtered to groupable pages. Merging a window into itself does nothing.
func MergeWindow(tabs []types.Tab, source, target int) types.Plan {
	p := types.Plan{Operation: types.OpMergeWindow, DestinationWindowID: target}
	if source == target {
		return p
	}
	var move []types.Tab
	for _, t := range tabs {
		if t.WindowID == source {
			move = append(move, t)
		}
	}
	p.Move = uniqueIDs(move)
	return p
}

// uniqueIDs returns the tab IDs in order with repeats dropped.
func uniqueIDs(tabs []types.Tab) []int {
	if len(tabs) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(tabs))
	ids := make([]int, 0, len(tabs))
	for _, t := range tabs {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	return ids
}
