package types

import (
	"fmt"
	"time"
)

// Tab is a single browser tab as reported by the host. The core only reads
// it and refers to it by ID.
type Tab struct {
	ID        int
	WindowID  int
	URL       string
	Title     string // empty if the host reported none
	Discarded bool
}

// MatchMode selects how coarse the canonical key is.
type MatchMode string

const (
	MatchHost          MatchMode = "host"
	MatchHostPath      MatchMode = "host+path"
	MatchHostPathNoWWW MatchMode = "host+path-no-www"
	MatchHostPathQuery MatchMode = "host+path+qs"
)

// MatchModes lists every supported mode, coarsest first.
var MatchModes = []MatchMode{MatchHost, MatchHostPath, MatchHostPathNoWWW, MatchHostPathQuery}

// ParseMatchMode validates a mode string.
func ParseMatchMode(s string) (MatchMode, error) {
	for _, m := range MatchModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// ViewMode controls which groups are listed.
type ViewMode string

const (
	ViewDuplicates ViewMode = "duplicates"
	ViewAll        ViewMode = "all"
)

// ParseViewMode validates a view mode string.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewDuplicates, ViewAll:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Group is the set of tabs sharing one canonical key, in inventory order.
type Group struct {
	Key  string
	Tabs []Tab
}

// IDs returns the tab IDs of the group in order.
func (g Group) IDs() []int {
	ids := make([]int, 0, len(g.Tabs))
	for _, t := range g.Tabs {
		ids = append(ids, t.ID)
	}
	return ids
}

// WindowSummary is the per-window tab count shown in the window overview.
type WindowSummary struct {
	WindowID  int
	TabCount  int
	IsCurrent bool
}

// Plan is the set of host mutations a bulk action needs. Close and Move hold
// distinct IDs in a stable order. DestinationWindowID is 0 when the plan has
// no destination; host window IDs are always positive.
type Plan struct {
	Operation           Operation
	Close               []int
	Move                []int
	DestinationWindowID int
}

// Empty reports whether the plan would not touch any tab.
func (p Plan) Empty() bool {
	return len(p.Close) == 0 && len(p.Move) == 0
}

// Operation names a planning operation.
type Operation string

const (
	OpKeepFirst                Operation = "keep-first"
	OpKeepOnly                 Operation = "keep-only"
	OpCloseGroup               Operation = "close-group"
	OpCloseTab                 Operation = "close-tab"
	OpConsolidateGroup         Operation = "consolidate-group"
	OpConsolidateDuplicates    Operation = "consolidate-duplicates"
	OpConsolidateSingleWindows Operation = "consolidate-single-windows"
	OpConsolidateUnique        Operation = "consolidate-unique"
	OpMergeWindow              Operation = "merge-window"
)

// Operations lists every operation the planner knows.
var Operations = []Operation{
	OpKeepFirst, OpKeepOnly, OpCloseGroup, OpCloseTab,
	OpConsolidateGroup, OpConsolidateDuplicates,
	OpConsolidateSingleWindows, OpConsolidateUnique, OpMergeWindow,
}

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Tracked reports whether a successful run of op counts towards the review
// prompt. Plain closes and window merges do not.
func (op Operation) Tracked() bool {
	switch op {
	case OpKeepFirst, OpKeepOnly, OpConsolidateGroup, OpConsolidateDuplicates,
		OpConsolidateSingleWindows, OpConsolidateUnique:
		return true
	}
	return false
}

// Outcome is what happened when a plan was executed.
type Outcome struct {
	Operation  Operation
	NoOp       bool
	Closed     []int
	Moved      []int
	Failed     map[int]string // tab ID -> error text
	FocusError string
}

// Changed reports whether at least one tab was closed or moved.
func (o Outcome) Changed() bool {
	return len(o.Closed) > 0 || len(o.Moved) > 0
}

// Preferences are the persisted popup settings.
type Preferences struct {
	MatchMode              MatchMode
	ViewMode               ViewMode
	WindowOverviewExpanded bool
}

// DefaultPreferences returns the settings used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		MatchMode:              MatchHost,
		ViewMode:               ViewDuplicates,
		WindowOverviewExpanded: true,
	}
}

// ReviewState tracks the review prompt.
type ReviewState struct {
	SuccessfulActions int
	LastPromptAt      time.Time // zero if never prompted
	Dismissed         bool
	Given             bool
	Disabled          bool
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// Stats holds aggregate counts for the status bar.
type Stats struct {
	TotalTabs       int
	TotalWindows    int
	Groups          int
	DuplicateGroups int
	RedundantTabs   int // tabs that keep-first would close across all groups
}
