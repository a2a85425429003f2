package server

import (
	"context"
	"fmt"

	"github.com/lotas/tabdedupe/internal/types"
)

// Bridge exposes the extension as the browser tab API: it satisfies
// inventory.Source and executor.Host on top of Server.Call.
type Bridge struct {
	srv *Server
}

// NewBridge returns a Bridge issuing commands through srv.
func NewBridge(srv *Server) *Bridge {
	return &Bridge{srv: srv}
}

// Server returns the underlying WebSocket server.
func (b *Bridge) Server() *Server {
	return b.srv
}

func (b *Bridge) QueryAllTabs(ctx context.Context) ([]types.Tab, error) {
	resp, err := b.srv.Call(ctx, OutgoingMsg{Action: "query-tabs"})
	if err != nil {
		return nil, err
	}
	return ParseTabs(resp.Tabs)
}

func (b *Bridge) QueryTabsInWindow(ctx context.Context, windowID int) ([]types.Tab, error) {
	resp, err := b.srv.Call(ctx, OutgoingMsg{Action: "query-tabs", WindowID: windowID})
	if err != nil {
		return nil, err
	}
	tabs, err := ParseTabs(resp.Tabs)
	if err != nil {
		return nil, err
	}
	// Older extension builds ignore windowId and return everything.
	out := tabs[:0]
	for _, t := range tabs {
		if t.WindowID == windowID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (b *Bridge) CurrentWindowID(ctx context.Context) (int, error) {
	resp, err := b.srv.Call(ctx, OutgoingMsg{Action: "current-window"})
	if err != nil {
		return 0, err
	}
	if resp.WindowID <= 0 {
		return 0, fmt.Errorf("current-window: invalid window id %d", resp.WindowID)
	}
	return resp.WindowID, nil
}

func (b *Bridge) MoveTabs(ctx context.Context, tabIDs []int, windowID, index int) error {
	_, err := b.srv.Call(ctx, OutgoingMsg{Action: "move", TabIDs: tabIDs, WindowID: windowID, Index: &index})
	return err
}

func (b *Bridge) CloseTabs(ctx context.Context, tabIDs []int) error {
	_, err := b.srv.Call(ctx, OutgoingMsg{Action: "close", TabIDs: tabIDs})
	return err
}

func (b *Bridge) FocusWindow(ctx context.Context, windowID int) error {
	_, err := b.srv.Call(ctx, OutgoingMsg{Action: "focus-window", WindowID: windowID})
	return err
}

func (b *Bridge) ActivateTab(ctx context.Context, tabID int) error {
	_, err := b.srv.Call(ctx, OutgoingMsg{Action: "activate", TabID: tabID})
	return err
}

func (b *Bridge) OpenTab(ctx context.Context, url string) error {
	_, err := b.srv.Call(ctx, OutgoingMsg{Action: "open", URL: url})
	return err
}
