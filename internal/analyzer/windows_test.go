package analyzer

import (
	"reflect"
	"testing"

	"github.com/lotas/tabdedupe/internal/types"
)

func TestBuildWindowSummaries(t *testing.T) {
	tabs := []types.Tab{
		{ID: 1, WindowID: 10, URL: "https://a.com"},
		{ID: 2, WindowID: 10, URL: "https://b.com"},
		{ID: 3, WindowID: 11, URL: "https://c.com"},
		{ID: 4, WindowID: 12, URL: "chrome://newtab"},
	}

	got := BuildWindowSummaries(tabs, 11, DefaultFilter())
	want := []types.WindowSummary{
		{WindowID: 11, TabCount: 1, IsCurrent: true},
		{WindowID: 10, TabCount: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBuildWindowSummariesAscendingWithoutCurrent(t *testing.T) {
	tabs := []types.Tab{
		{ID: 1, WindowID: 30, URL: "https://a.com"},
		{ID: 2, WindowID: 5, URL: "https://b.com"},
		{ID: 3, WindowID: 20, URL: "https://c.com"},
	}
	var ids []int
	for _, w := range BuildWindowSummaries(tabs, 99, DefaultFilter()) {
		ids = append(ids, w.WindowID)
	}
	if want := []int{5, 20, 30}; !reflect.DeepEqual(ids, want) {
		t.Errorf("window order = %v, want %v", ids, want)
	}
}

func TestHostBreakdown(t *testing.T) {
	tabs := []types.Tab{
		{URL: "https://www.b.com/1"},
		{URL: "https://a.com/1"},
		{URL: "https://b.com/2"},
		{URL: "not a url"},
	}
	got := HostBreakdown(tabs)
	want := []HostCount{{Host: "b.com", Count: 2}, {Host: "a.com", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
