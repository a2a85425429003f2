package export

import (
	"time"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/inventory"
	"github.com/lotas/tabdedupe/internal/types"
)

// Report is the data both exporters render.
type Report struct {
	Source      string
	Mode        types.MatchMode
	View        types.ViewMode
	GeneratedAt time.Time
	Groups      []types.Group
	Windows     []types.WindowSummary
	Stats       types.Stats
}

// NewReport builds a report from snap under viewMode, optionally narrowed
// by a search term.
func NewReport(source string, snap *inventory.Snapshot, viewMode types.ViewMode, term string) Report {
	return Report{
		Source:      source,
		Mode:        snap.Mode,
		View:        viewMode,
		GeneratedAt: time.Now(),
		Groups:      analyzer.FilterGroups(snap.View(viewMode), term),
		Windows:     snap.Windows,
		Stats:       snap.Stats(),
	}
}
