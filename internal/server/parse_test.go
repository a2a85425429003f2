package server

import (
	"encoding/json"
	"testing"
)

func TestParseTabs(t *testing.T) {
	body := `{
		"id": "cmd-1",
		"ok": true,
		"tabs": [
			{"id": 1, "windowId": 10, "url": "https://example.com", "title": "Example", "index": 0},
			{"id": 2, "windowId": 11, "url": "https://other.com", "discarded": true}
		]
	}`

	var msg IncomingMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		t.Fatal(err)
	}
	if !msg.IsResponse() {
		t.Error("message with id and no type should be a response")
	}

	tabs, err := ParseTabs(msg.Tabs)
	if err != nil {
		t.Fatal(err)
	}
	if len(tabs) != 2 {
		t.Fatalf("got %d tabs, want 2", len(tabs))
	}
	if tabs[0].ID != 1 || tabs[0].WindowID != 10 || tabs[0].Title != "Example" {
		t.Errorf("tab 0 = %+v", tabs[0])
	}
	if tabs[1].Title != "" || !tabs[1].Discarded {
		t.Errorf("tab 1 = %+v, want no title and discarded", tabs[1])
	}
}

func TestParseTabsEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "[]"} {
		tabs, err := ParseTabs(json.RawMessage(raw))
		if err != nil {
			t.Errorf("%q: %v", raw, err)
		}
		if len(tabs) != 0 {
			t.Errorf("%q: got %d tabs", raw, len(tabs))
		}
	}
	if _, err := ParseTabs(json.RawMessage(`{"id":1}`)); err == nil {
		t.Error("expected error for a non-array tab list")
	}
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab(json.RawMessage(`{"id": 7, "windowId": 3, "url": "https://x.com", "title": "X"}`))
	if err != nil {
		t.Fatal(err)
	}
	if tab.ID != 7 || tab.WindowID != 3 || tab.URL != "https://x.com" {
		t.Errorf("got %+v", tab)
	}
}

func TestEventIsNotResponse(t *testing.T) {
	var msg IncomingMsg
	if err := json.Unmarshal([]byte(`{"type": "tab.removed", "tabId": 4}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.IsResponse() {
		t.Error("event classified as response")
	}
}
