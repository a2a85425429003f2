package analyzer

import "github.com/lotas/tabdedupe/internal/types"

func ComputeStats(groups []types.Group, windows []types.WindowSummary) types.Stats {
	stats := types.Stats{
		TotalWindows: len(windows),
		Groups:       len(groups),
	}
	for _, g := range groups {
		stats.TotalTabs += len(g.Tabs)
		if len(g.Tabs) > 1 {
			stats.DuplicateGroups++
			stats.RedundantTabs += len(g.Tabs) - 1
		}
	}
	return stats
}
