package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lotas/tabdedupe/internal/types"
)

func sampleReport() Report {
	return Report{
		Source:      "extension",
		Mode:        types.MatchHostPath,
		View:        types.ViewDuplicates,
		GeneratedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		Groups: []types.Group{
			{Key: "go.dev/doc", Tabs: []types.Tab{
				{ID: 1, WindowID: 10, Title: "Go docs", URL: "https://go.dev/doc"},
				{ID: 4, WindowID: 11, URL: "https://go.dev/doc/", Discarded: true},
			}},
		},
		Windows: []types.WindowSummary{{WindowID: 11, TabCount: 2, IsCurrent: true}, {WindowID: 10, TabCount: 1}},
		Stats:   types.Stats{TotalTabs: 3, TotalWindows: 2, Groups: 2, DuplicateGroups: 1, RedundantTabs: 1},
	}
}

func TestJSON(t *testing.T) {
	result, err := JSON(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\noutput:\n%s", err, result)
	}

	if parsed.Source != "extension" || parsed.Mode != "host+path" || parsed.View != "duplicates" {
		t.Errorf("header = %+v", parsed)
	}
	if parsed.Stats.RedundantTabs != 1 || parsed.Stats.Tabs != 3 {
		t.Errorf("stats = %+v", parsed.Stats)
	}
	if len(parsed.Windows) != 2 || !parsed.Windows[0].Current || parsed.Windows[0].ID != 11 {
		t.Errorf("windows = %+v", parsed.Windows)
	}
	if len(parsed.Groups) != 1 || parsed.Groups[0].Size != 2 {
		t.Fatalf("groups = %+v", parsed.Groups)
	}

	tabs := parsed.Groups[0].Tabs
	if !tabs[0].Kept || tabs[1].Kept {
		t.Errorf("only the first tab should be kept: %+v", tabs)
	}
	if tabs[0].Domain != "go.dev" {
		t.Errorf("expected domain 'go.dev', got %q", tabs[0].Domain)
	}
	if !tabs[1].Discarded || tabs[1].WindowID != 11 {
		t.Errorf("tab 2 = %+v", tabs[1])
	}
}

func TestJSON_Empty(t *testing.T) {
	result, err := JSON(Report{Source: "empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Groups == nil || len(parsed.Groups) != 0 {
		t.Errorf("expected an empty group list, got %v", parsed.Groups)
	}
}

func TestExtractDomain(t *testing.T) {
	if got := extractDomain("https://Example.com:8443/x"); got != "Example.com" {
		t.Errorf("got %q", got)
	}
	if got := extractDomain("not a url"); got != "not a url" {
		t.Errorf("got %q", got)
	}
}
