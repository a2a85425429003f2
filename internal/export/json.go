package export

import (
	"encoding/json"
	"net/url"
	"time"
)

type jsonExport struct {
	Source     string       `json:"source"`
	Mode       string       `json:"mode"`
	View       string       `json:"view"`
	ExportedAt time.Time    `json:"exported_at"`
	Stats      jsonStats    `json:"stats"`
	Windows    []jsonWindow `json:"windows"`
	Groups     []jsonGroup  `json:"groups"`
}

type jsonStats struct {
	Tabs            int `json:"tabs"`
	Windows         int `json:"windows"`
	Groups          int `json:"groups"`
	DuplicateGroups int `json:"duplicate_groups"`
	RedundantTabs   int `json:"redundant_tabs"`
}

type jsonWindow struct {
	ID      int  `json:"id"`
	Tabs    int  `json:"tabs"`
	Current bool `json:"current,omitempty"`
}

type jsonGroup struct {
	Key  string    `json:"key"`
	Size int       `json:"size"`
	Tabs []jsonTab `json:"tabs"`
}

type jsonTab struct {
	ID        int    `json:"id"`
	WindowID  int    `json:"window_id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Domain    string `json:"domain"`
	Discarded bool   `json:"discarded,omitempty"`
	Kept      bool   `json:"kept"`
}

// JSON formats a report as a JSON document. In every group the first tab
// is marked as the one keep-first would keep.
func JSON(r Report) (string, error) {
	out := jsonExport{
		Source:     r.Source,
		Mode:       string(r.Mode),
		View:       string(r.View),
		ExportedAt: r.GeneratedAt,
		Stats: jsonStats{
			Tabs:            r.Stats.TotalTabs,
			Windows:         r.Stats.TotalWindows,
			Groups:          r.Stats.Groups,
			DuplicateGroups: r.Stats.DuplicateGroups,
			RedundantTabs:   r.Stats.RedundantTabs,
		},
		Windows: make([]jsonWindow, 0, len(r.Windows)),
		Groups:  make([]jsonGroup, 0, len(r.Groups)),
	}

	for _, w := range r.Windows {
		out.Windows = append(out.Windows, jsonWindow{ID: w.WindowID, Tabs: w.TabCount, Current: w.IsCurrent})
	}

	for _, g := range r.Groups {
		group := jsonGroup{
			Key:  g.Key,
			Size: len(g.Tabs),
			Tabs: make([]jsonTab, 0, len(g.Tabs)),
		}
		for i, tab := range g.Tabs {
			group.Tabs = append(group.Tabs, jsonTab{
				ID:        tab.ID,
				WindowID:  tab.WindowID,
				Title:     tab.Title,
				URL:       tab.URL,
				Domain:    extractDomain(tab.URL),
				Discarded: tab.Discarded,
				Kept:      i == 0,
			})
		}
		out.Groups = append(out.Groups, group)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
