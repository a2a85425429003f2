// Package controller is the single entry point the terminal UI, the HTTP
// API and the CLI use to read tab groups and act on them.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/executor"
	"github.com/lotas/tabdedupe/internal/inventory"
	"github.com/lotas/tabdedupe/internal/planner"
	"github.com/lotas/tabdedupe/internal/review"
	"github.com/lotas/tabdedupe/internal/types"
)

var (
	// ErrGroupNotFound is returned when a request names a key that is not
	// in the current snapshot.
	ErrGroupNotFound = errors.New("group not found")
	// ErrTabNotFound is returned when a request names an unknown tab.
	ErrTabNotFound = errors.New("tab not found")
	// ErrWindowNotFound is returned when a source window has no tabs.
	ErrWindowNotFound = errors.New("window not found")
)

// Browser is the full host API: inventory reads, mutations, tab activation
// and opening new tabs.
type Browser interface {
	inventory.Source
	executor.Host
	ActivateTab(ctx context.Context, tabID int) error
	OpenTab(ctx context.Context, url string) error
}

// PreferenceStore persists the preferences.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context) (types.Preferences, error)
	SavePreferences(ctx context.Context, p types.Preferences) error
}

// ActionLog records executed plans. It is optional.
type ActionLog interface {
	RecordAction(ctx context.Context, out types.Outcome, destination int) error
}

// ActionRequest selects a planning operation and its arguments. Key names
// a group, TabID a tab. A TargetWindowID of 0 means the current window.
// When Mode is set, Plan refreshes with it first instead of planning against
// the latest snapshot.
type ActionRequest struct {
	Op             types.Operation
	Key            string
	TabID          int
	TargetWindowID int
	SourceWindowID int
	Mode           types.MatchMode
}

// Result is what Apply returns.
type Result struct {
	Plan    types.Plan
	Outcome types.Outcome
	// PromptReview is set when the review prompt became due.
	PromptReview bool
}

// Controller holds the latest snapshot and the active preferences.
type Controller struct {
	browser   Browser
	refresher *inventory.Refresher
	exec      *executor.Executor
	prefs     PreferenceStore
	review    *review.Tracker
	log       ActionLog

	mu          sync.Mutex
	snap        *inventory.Snapshot
	preferences types.Preferences
}

// Options bundles the optional collaborators.
type Options struct {
	Filter analyzer.PageFilter
	Review *review.Tracker
	Log    ActionLog
}

// New wires a Controller. prefs may be nil, in which case preferences live
// in memory only.
func New(browser Browser, prefs PreferenceStore, opts Options) *Controller {
	if opts.Filter.InternalPrefixes == nil {
		opts.Filter = analyzer.DefaultFilter()
	}
	c := &Controller{
		browser:     browser,
		refresher:   inventory.NewRefresher(browser, opts.Filter),
		prefs:       prefs,
		review:      opts.Review,
		log:         opts.Log,
		preferences: types.DefaultPreferences(),
	}
	var hook executor.ActionHook
	if opts.Review != nil {
		hook = opts.Review
	}
	c.exec = executor.New(browser, hook)
	return c
}

// LoadPreferences reads the stored preferences. A store failure is logged
// and the defaults stay in effect.
func (c *Controller) LoadPreferences(ctx context.Context) types.Preferences {
	p := types.DefaultPreferences()
	if c.prefs != nil {
		loaded, err := c.prefs.LoadPreferences(ctx)
		if err != nil {
			applog.Error("prefs.load", err)
		} else {
			p = loaded
		}
	}
	c.mu.Lock()
	c.preferences = p
	c.mu.Unlock()
	return p
}

// Preferences returns the active preferences.
func (c *Controller) Preferences() types.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferences
}

// SetPreferences validates and activates p, then persists it. The new
// preferences stay active even if saving fails; the error is returned for
// display.
func (c *Controller) SetPreferences(ctx context.Context, p types.Preferences) error {
	if _, err := types.ParseMatchMode(string(p.MatchMode)); err != nil {
		return err
	}
	if _, err := types.ParseViewMode(string(p.ViewMode)); err != nil {
		return err
	}
	c.mu.Lock()
	c.preferences = p
	c.mu.Unlock()

	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.SavePreferences(ctx, p); err != nil {
		applog.Error("prefs.save", err)
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Refresh reads a new snapshot using the active match mode. A superseded
// result is dropped and ErrSuperseded returned; a host failure replaces the
// snapshot with an empty one that carries the error.
func (c *Controller) Refresh(ctx context.Context) (*inventory.Snapshot, error) {
	return c.RefreshMode(ctx, c.Preferences().MatchMode)
}

// RefreshMode is Refresh with an explicit match mode.
func (c *Controller) RefreshMode(ctx context.Context, mode types.MatchMode) (*inventory.Snapshot, error) {
	snap, err := c.refresher.Refresh(ctx, mode)
	if errors.Is(err, inventory.ErrSuperseded) {
		return nil, err
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap, err
}

// Snapshot returns the latest accepted snapshot, or nil before the first
// refresh.
func (c *Controller) Snapshot() *inventory.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Groups returns the groups of the latest snapshot under viewMode,
// filtered by a search term.
func (c *Controller) Groups(viewMode types.ViewMode, term string) []types.Group {
	snap := c.Snapshot()
	if snap == nil {
		return nil
	}
	return analyzer.FilterGroups(snap.View(viewMode), term)
}

// WindowHosts returns the host breakdown of one window.
func (c *Controller) WindowHosts(ctx context.Context, windowID int) ([]analyzer.HostCount, error) {
	tabs, err := c.refresher.WindowTabs(ctx, windowID)
	if err != nil {
		return nil, err
	}
	return analyzer.HostBreakdown(tabs), nil
}

// snapshotOrRefresh returns the latest snapshot, refreshing first when
// there is none.
func (c *Controller) snapshotOrRefresh(ctx context.Context) (*inventory.Snapshot, error) {
	if snap := c.Snapshot(); snap != nil && snap.Err == nil {
		return snap, nil
	}
	return c.Refresh(ctx)
}

// Plan computes the plan for req against the latest snapshot.
func (c *Controller) Plan(ctx context.Context, req ActionRequest) (types.Plan, error) {
	var snap *inventory.Snapshot
	var err error
	if req.Mode != "" {
		snap, err = c.RefreshMode(ctx, req.Mode)
	} else {
		snap, err = c.snapshotOrRefresh(ctx)
	}
	if err != nil {
		return types.Plan{Operation: req.Op}, err
	}

	target := req.TargetWindowID
	if target == 0 {
		target = snap.CurrentWindowID
	}

	group := func() (types.Group, error) {
		g, ok := analyzer.FindGroup(snap.Groups, req.Key)
		if !ok {
			return types.Group{}, fmt.Errorf("%w: %q", ErrGroupNotFound, req.Key)
		}
		return g, nil
	}

	switch req.Op {
	case types.OpKeepFirst:
		g, err := group()
		if err != nil {
			return types.Plan{Operation: req.Op}, err
		}
		return planner.KeepFirst(g), nil
	case types.OpKeepOnly:
		g, err := group()
		if err != nil {
			return types.Plan{Operation: req.Op}, err
		}
		if _, ok := analyzer.FindTab(g.Tabs, req.TabID); !ok {
			return types.Plan{Operation: req.Op}, fmt.Errorf("%w: %d in group %q", ErrTabNotFound, req.TabID, req.Key)
		}
		return planner.KeepOnly(g, req.TabID), nil
	case types.OpCloseGroup:
		g, err := group()
		if err != nil {
			return types.Plan{Operation: req.Op}, err
		}
		return planner.CloseGroup(g), nil
	case types.OpCloseTab:
		if _, ok := analyzer.FindTab(snap.Tabs, req.TabID); !ok {
			return types.Plan{Operation: req.Op}, fmt.Errorf("%w: %d", ErrTabNotFound, req.TabID)
		}
		return planner.CloseTab(req.TabID), nil
	case types.OpConsolidateGroup:
		g, err := group()
		if err != nil {
			return types.Plan{Operation: req.Op}, err
		}
		return planner.ConsolidateGroup(g, target), nil
	case types.OpConsolidateDuplicates:
		return planner.ConsolidateDuplicates(snap.Groups), nil
	case types.OpConsolidateSingleWindows:
		return planner.ConsolidateSingleTabWindows(snap.Windows, snap.Tabs, target), nil
	case types.OpConsolidateUnique:
		return planner.ConsolidateUnique(snap.Groups, target), nil
	case types.OpMergeWindow:
		if len(analyzer.TabsInWindow(snap.Tabs, req.SourceWindowID, c.refresher.Filter())) == 0 {
			return types.Plan{Operation: req.Op}, fmt.Errorf("%w: %d", ErrWindowNotFound, req.SourceWindowID)
		}
		return planner.MergeWindow(snap.Tabs, req.SourceWindowID, target), nil
	}
	return types.Plan{Operation: req.Op}, fmt.Errorf("unknown operation %q", req.Op)
}

// Apply plans and executes req, then refreshes. An empty plan returns a
// no-op result without touching the browser. A partial failure still
// returns the populated result alongside the error.
func (c *Controller) Apply(ctx context.Context, req ActionRequest) (Result, error) {
	plan, err := c.Plan(ctx, req)
	if err != nil {
		return Result{Plan: plan}, err
	}
	return c.Execute(ctx, plan)
}

// Execute runs an already computed plan. The refresh that follows keeps the
// match mode of the snapshot the plan was built from.
func (c *Controller) Execute(ctx context.Context, plan types.Plan) (Result, error) {
	res := Result{Plan: plan}
	mode := c.Preferences().MatchMode
	if snap := c.Snapshot(); snap != nil && snap.Mode != "" {
		mode = snap.Mode
	}
	out, execErr := c.exec.Execute(ctx, plan)
	res.Outcome = out
	if out.NoOp {
		return res, nil
	}

	if c.log != nil {
		if err := c.log.RecordAction(ctx, out, plan.DestinationWindowID); err != nil {
			applog.Error("actions.record", err, "op", plan.Operation)
		}
	}
	if c.review != nil {
		res.PromptReview = c.review.TakePending()
	}

	if _, err := c.RefreshMode(ctx, mode); err != nil && !errors.Is(err, inventory.ErrSuperseded) {
		applog.Error("apply.refresh", err, "op", plan.Operation)
	}
	return res, execErr
}

// SwitchTo focuses the tab's window and activates the tab.
func (c *Controller) SwitchTo(ctx context.Context, tabID int) error {
	snap, err := c.snapshotOrRefresh(ctx)
	if err != nil {
		return err
	}
	tab, ok := analyzer.FindTab(snap.Tabs, tabID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTabNotFound, tabID)
	}
	if err := c.browser.FocusWindow(ctx, tab.WindowID); err != nil {
		return fmt.Errorf("focus window %d: %w", tab.WindowID, err)
	}
	if err := c.browser.ActivateTab(ctx, tabID); err != nil {
		return fmt.Errorf("activate tab %d: %w", tabID, err)
	}
	return nil
}

// Review returns the review tracker, or nil when prompts are off.
func (c *Controller) Review() *review.Tracker {
	return c.review
}

// AcceptReview opens the review page in the browser and stops prompting.
func (c *Controller) AcceptReview(ctx context.Context) error {
	if c.review == nil {
		return nil
	}
	return c.review.Accept(ctx, c.browser)
}

// DismissReview records a "not now" answer to the review prompt.
func (c *Controller) DismissReview(ctx context.Context) error {
	if c.review == nil {
		return nil
	}
	return c.review.Dismiss(ctx)
}

// DisableReview turns the review prompt off for good.
func (c *Controller) DisableReview(ctx context.Context) error {
	if c.review == nil {
		return nil
	}
	return c.review.Disable(ctx)
}
