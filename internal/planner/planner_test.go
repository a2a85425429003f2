package planner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/types"
)

func tab(id, win int, url string) types.Tab {
	return types.Tab{ID: id, WindowID: win, URL: url}
}

func TestKeepFirst(t *testing.T) {
	for n := 0; n <= 4; n++ {
		var g types.Group
		for i := 1; i <= n; i++ {
			g.Tabs = append(g.Tabs, tab(i, 1, "https://a.com"))
		}
		p := KeepFirst(g)
		want := n - 1
		if n == 0 {
			want = 0
		}
		if len(p.Close) != want {
			t.Errorf("n=%d: closes %d tabs, want %d", n, len(p.Close), want)
		}
		for _, id := range p.Close {
			if id == 1 {
				t.Errorf("n=%d: keep-first closed the first tab", n)
			}
		}
		if len(p.Move) != 0 || p.DestinationWindowID != 0 {
			t.Errorf("n=%d: keep-first must not move tabs", n)
		}
	}
}

func TestKeepFirstEndToEnd(t *testing.T) {
	tabs := []types.Tab{
		tab(1, 10, "https://a.com/x"),
		tab(2, 11, "https://a.com/x/"),
		tab(3, 11, "https://b.com"),
	}
	dups := analyzer.DuplicatesView(analyzer.GroupTabs(tabs, types.MatchHostPath, analyzer.DefaultFilter()))
	if len(dups) != 1 {
		t.Fatalf("got %d duplicate groups, want 1", len(dups))
	}
	p := KeepFirst(dups[0])
	if !reflect.DeepEqual(p.Close, []int{2}) {
		t.Errorf("close = %v, want [2]", p.Close)
	}
}

func TestKeepOnly(t *testing.T) {
	g := types.Group{Key: "a.com", Tabs: []types.Tab{tab(1, 1, ""), tab(2, 1, ""), tab(3, 2, "")}}

	p := KeepOnly(g, 2)
	if !reflect.DeepEqual(p.Close, []int{1, 3}) {
		t.Errorf("close = %v, want [1 3]", p.Close)
	}
	if p := KeepOnly(g, 99); !p.Empty() {
		t.Errorf("unknown tab should give an empty plan, got %+v", p)
	}
}

func TestCloseGroupAndTab(t *testing.T) {
	g := types.Group{Tabs: []types.Tab{tab(4, 1, ""), tab(5, 1, "")}}
	if p := CloseGroup(g); !reflect.DeepEqual(p.Close, []int{4, 5}) || p.Operation != types.OpCloseGroup {
		t.Errorf("CloseGroup = %+v", p)
	}
	if p := CloseTab(7); !reflect.DeepEqual(p.Close, []int{7}) || p.Operation != types.OpCloseTab {
		t.Errorf("CloseTab = %+v", p)
	}
}

func TestConsolidateGroup(t *testing.T) {
	g := types.Group{Tabs: []types.Tab{tab(1, 10, ""), tab(2, 11, ""), tab(3, 12, "")}}
	p := ConsolidateGroup(g, 11)
	if !reflect.DeepEqual(p.Move, []int{1, 3}) {
		t.Errorf("move = %v, want [1 3]", p.Move)
	}
	if p.DestinationWindowID != 11 {
		t.Errorf("destination = %d, want 11", p.DestinationWindowID)
	}

	sameWindow := types.Group{Tabs: []types.Tab{tab(1, 5, ""), tab(2, 5, "")}}
	if p := ConsolidateGroup(sameWindow, 5); !p.Empty() {
		t.Errorf("group already in window should be a no-op, got %+v", p)
	}
}

func TestConsolidateDuplicates(t *testing.T) {
	groups := []types.Group{
		{Key: "a", Tabs: []types.Tab{tab(1, 1, ""), tab(2, 1, ""), tab(3, 2, "")}},
		{Key: "b", Tabs: []types.Tab{tab(4, 1, "")}},
		{Key: "c", Tabs: []types.Tab{tab(5, 2, ""), tab(6, 2, "")}},
	}
	p := ConsolidateDuplicates(groups)
	if !reflect.DeepEqual(p.Close, []int{2, 3, 6}) {
		t.Errorf("close = %v, want [2 3 6]", p.Close)
	}

	if p := ConsolidateDuplicates(groups[1:2]); !p.Empty() {
		t.Errorf("no duplicates should give an empty plan, got %+v", p)
	}
	if p := ConsolidateDuplicates(nil); !p.Empty() {
		t.Errorf("no groups should give an empty plan, got %+v", p)
	}
}

func TestConsolidateSingleTabWindows(t *testing.T) {
	tabs := []types.Tab{
		tab(1, 10, "https://a.com"),
		tab(2, 10, "https://b.com"),
		tab(3, 11, "https://c.com"),
		tab(4, 12, "https://d.com"),
		tab(5, 13, "https://e.com"),
	}
	summaries := analyzer.BuildWindowSummaries(tabs, 13, analyzer.DefaultFilter())

	p := ConsolidateSingleTabWindows(summaries, tabs, 13)
	if !reflect.DeepEqual(p.Move, []int{3, 4}) {
		t.Errorf("move = %v, want [3 4]", p.Move)
	}
	if p.DestinationWindowID != 13 {
		t.Errorf("destination = %d, want 13", p.DestinationWindowID)
	}
}

func TestConsolidateUnique(t *testing.T) {
	groups := []types.Group{
		{Key: "a", Tabs: []types.Tab{tab(1, 10, ""), tab(2, 11, "")}},
		{Key: "b", Tabs: []types.Tab{tab(3, 11, "")}},
		{Key: "c", Tabs: []types.Tab{tab(4, 12, "")}},
		{Key: "d", Tabs: []types.Tab{tab(5, 10, "")}},
	}
	p := ConsolidateUnique(groups, 10)
	if !reflect.DeepEqual(p.Move, []int{3, 4}) {
		t.Errorf("move = %v, want [3 4]", p.Move)
	}
}

func TestMergeWindow(t *testing.T) {
	tabs := []types.Tab{tab(1, 10, ""), tab(2, 11, ""), tab(3, 10, "")}
	p := MergeWindow(tabs, 10, 11)
	if !reflect.DeepEqual(p.Move, []int{1, 3}) || p.DestinationWindowID != 11 {
		t.Errorf("MergeWindow = %+v", p)
	}
	if p := MergeWindow(tabs, 10, 10); !p.Empty() {
		t.Errorf("merging a window into itself should be empty, got %+v", p)
	}
}

func TestPlansHaveNoRepeats(t *testing.T) {
	g := types.Group{Tabs: []types.Tab{tab(1, 1, ""), tab(2, 1, ""), tab(2, 1, "")}}
	if p := KeepFirst(g); !reflect.DeepEqual(p.Close, []int{2}) {
		t.Errorf("close = %v, want [2]", p.Close)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(types.Plan{}); got != "nothing to do" {
		t.Errorf("empty plan: %q", got)
	}
	got := Describe(types.Plan{Close: []int{1}, Move: []int{2, 3}, DestinationWindowID: 7})
	if got != "close 1 tab, move 2 tabs to window 7" {
		t.Errorf("Describe = %q", got)
	}
}

func TestFormatDryRun(t *testing.T) {
	tabs := []types.Tab{
		{ID: 1, WindowID: 3, URL: "https://a.com", Title: "Alpha"},
		{ID: 2, WindowID: 4, URL: "https://b.com"},
	}
	out := FormatDryRun(types.Plan{Operation: types.OpCloseGroup, Close: []int{1, 2, 9}}, tabs)
	for _, want := range []string{"close-group: close 3 tabs", "Close (3):", "#1 [w3] Alpha", "#2 [w4] https://b.com", "#9"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
