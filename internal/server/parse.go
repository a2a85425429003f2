package server

import (
	"encoding/json"
	"fmt"

	"github.com/lotas/tabdedupe/internal/types"
)

type wireTab struct {
	ID        int    `json:"id"`
	WindowID  int    `json:"windowId"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Discarded bool   `json:"discarded"`
}

// ParseTabs decodes the tab list carried by a query-tabs response or a
// snapshot event. A missing list decodes to no tabs.
func ParseTabs(raw json.RawMessage) ([]types.Tab, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var wire []wireTab
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}
	tabs := make([]types.Tab, 0, len(wire))
	for _, wt := range wire {
		tabs = append(tabs, wt.tab())
	}
	return tabs, nil
}

// ParseTab converts a raw JSON tab into a Tab.
func ParseTab(raw json.RawMessage) (types.Tab, error) {
	var wt wireTab
	if err := json.Unmarshal(raw, &wt); err != nil {
		return types.Tab{}, err
	}
	return wt.tab(), nil
}

func (wt wireTab) tab() types.Tab {
	return types.Tab{
		ID:        wt.ID,
		WindowID:  wt.WindowID,
		URL:       wt.URL,
		Title:     wt.Title,
		Discarded: wt.Discarded,
	}
}
