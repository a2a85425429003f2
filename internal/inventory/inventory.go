// Package inventory fetches tab snapshots from the browser and derives the
// grouped views from them.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/types"
)

var (
	// ErrHostQuery wraps any failure to read tabs or windows from the host.
	ErrHostQuery = errors.New("host query failed")
	// ErrSuperseded is returned when a newer refresh started before this
	// one finished. Its result must be dropped.
	ErrSuperseded = errors.New("refresh superseded")
)

// Source is the read side of the browser tab API.
type Source interface {
	QueryAllTabs(ctx context.Context) ([]types.Tab, error)
	QueryTabsInWindow(ctx context.Context, windowID int) ([]types.Tab, error)
	CurrentWindowID(ctx context.Context) (int, error)
}

// Snapshot is everything derived from one inventory read. Tabs holds the
// groupable tabs only.
type Snapshot struct {
	Generation      uint64
	Mode            types.MatchMode
	Tabs            []types.Tab
	Groups          []types.Group
	Windows         []types.WindowSummary
	CurrentWindowID int
	FetchedAt       time.Time
	Err             error
}

// View returns the groups listed under viewMode.
func (s *Snapshot) View(viewMode types.ViewMode) []types.Group {
	return analyzer.View(s.Groups, viewMode)
}

// Stats returns the aggregate counts for the snapshot.
func (s *Snapshot) Stats() types.Stats {
	return analyzer.ComputeStats(s.Groups, s.Windows)
}

// Refresher builds snapshots. It is safe for concurrent use; overlapping
// calls are ordered by a generation counter.
type Refresher struct {
	source Source
	filter analyzer.PageFilter
	gen    atomic.Uint64
	now    func() time.Time
}

// NewRefresher returns a Refresher reading from source.
func NewRefresher(source Source, filter analyzer.PageFilter) *Refresher {
	return &Refresher{source: source, filter: filter, now: time.Now}
}

// Filter returns the page filter used for grouping.
func (r *Refresher) Filter() analyzer.PageFilter {
	return r.filter
}

// Source returns the underlying host source.
func (r *Refresher) Source() Source {
	return r.source
}

// Refresh reads all tabs and the current window once and groups them by
// mode. On a host failure the returned snapshot is empty, carries the error
// in Err, and the same error is returned. If a newer Refresh began while
// this one ran, the snapshot is returned with ErrSuperseded.
func (r *Refresher) Refresh(ctx context.Context, mode types.MatchMode) (*Snapshot, error) {
	gen := r.gen.Add(1)
	snap := &Snapshot{Generation: gen, Mode: mode}

	tabs, current, err := r.fetch(ctx)
	snap.FetchedAt = r.now()
	if err != nil {
		snap.Err = err
		applog.Error("refresh.failed", err, "gen", gen)
		if r.gen.Load() != gen {
			return snap, ErrSuperseded
		}
		return snap, err
	}

	snap.Tabs = r.filter.Apply(tabs)
	snap.CurrentWindowID = current
	snap.Groups = analyzer.GroupTabs(snap.Tabs, mode, r.filter)
	snap.Windows = analyzer.BuildWindowSummaries(snap.Tabs, current, r.filter)

	if r.gen.Load() != gen {
		applog.Info("refresh.superseded", "gen", gen)
		return snap, ErrSuperseded
	}
	applog.Info("refresh.done", "gen", gen, "mode", mode, "tabs", len(snap.Tabs), "groups", len(snap.Groups))
	return snap, nil
}

// Current reports whether snap came from the latest Refresh call.
func (r *Refresher) Current(snap *Snapshot) bool {
	return snap != nil && snap.Generation == r.gen.Load()
}

// WindowTabs reads the groupable tabs of a single window.
func (r *Refresher) WindowTabs(ctx context.Context, windowID int) ([]types.Tab, error) {
	tabs, err := r.source.QueryTabsInWindow(ctx, windowID)
	if err != nil {
		return nil, fmt.Errorf("%w: tabs in window %d: %w", ErrHostQuery, windowID, err)
	}
	return analyzer.TabsInWindow(tabs, windowID, r.filter), nil
}

func (r *Refresher) fetch(ctx context.Context) ([]types.Tab, int, error) {
	tabs, err := r.source.QueryAllTabs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: query tabs: %w", ErrHostQuery, err)
	}
	current, err := r.source.CurrentWindowID(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: current window: %w", ErrHostQuery, err)
	}
	return tabs, current, nil
}
