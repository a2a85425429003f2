package analyzer

import (
	"testing"

	"github.com/lotas/tabdedupe/internal/types"
)

func TestComputeStats(t *testing.T) {
	groups := []types.Group{
		{Key: "a", Tabs: make([]types.Tab, 3)},
		{Key: "b", Tabs: make([]types.Tab, 2)},
		{Key: "c", Tabs: make([]types.Tab, 1)},
	}
	windows := []types.WindowSummary{{WindowID: 1}, {WindowID: 2}}

	stats := ComputeStats(groups, windows)
	if stats.TotalTabs != 6 {
		t.Errorf("total tabs: got %d, want 6", stats.TotalTabs)
	}
	if stats.TotalWindows != 2 {
		t.Errorf("total windows: got %d, want 2", stats.TotalWindows)
	}
	if stats.Groups != 3 {
		t.Errorf("groups: got %d, want 3", stats.Groups)
	}
	if stats.DuplicateGroups != 2 {
		t.Errorf("duplicate groups: got %d, want 2", stats.DuplicateGroups)
	}
	if stats.RedundantTabs != 3 {
		t.Errorf("redundant tabs: got %d, want 3", stats.RedundantTabs)
	}
}
