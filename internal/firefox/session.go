package firefox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lotas/tabdedupe/internal/types"
	"github.com/pierrec/lz4/v4"
)

// ErrReadOnly is returned by every mutation on a session file source.
var ErrReadOnly = errors.New("firefox session file is read-only; connect the browser extension to change tabs")

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format.
// The format is: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12

	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}
	for i := range mozLz4Magic {
		if data[i] != mozLz4Magic[i] {
			return nil, fmt.Errorf("mozlz4: invalid header magic")
		}
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}
	return dst[:n], nil
}

type rawEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type rawTab struct {
	Entries []rawEntry `json:"entries"`
	Index   int        `json:"index"`
}

type rawWindow struct {
	Tabs []rawTab `json:"tabs"`
}

type rawSession struct {
	Windows        []rawWindow `json:"windows"`
	SelectedWindow int         `json:"selectedWindow"`
}

// Session is the tab inventory recovered from a session file. Firefox does
// not persist runtime tab IDs, so IDs are numbered from 1 in file order and
// windows are numbered from 1 by position.
type Session struct {
	Tabs            []types.Tab
	CurrentWindowID int
}

// ParseSession parses decompressed session JSON.
func ParseSession(data []byte) (*Session, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}

	s := &Session{CurrentWindowID: raw.SelectedWindow}
	if s.CurrentWindowID < 1 || s.CurrentWindowID > len(raw.Windows) {
		s.CurrentWindowID = 1
	}

	nextID := 1
	for winIdx, window := range raw.Windows {
		for _, rt := range window.Tabs {
			if len(rt.Entries) == 0 {
				continue
			}
			// index is 1-based; current page is entries[index-1].
			entryIdx := rt.Index - 1
			if entryIdx < 0 || entryIdx >= len(rt.Entries) {
				entryIdx = len(rt.Entries) - 1
			}
			entry := rt.Entries[entryIdx]

			s.Tabs = append(s.Tabs, types.Tab{
				ID:       nextID,
				WindowID: winIdx + 1,
				URL:      entry.URL,
				Title:    entry.Title,
			})
			nextID++
		}
	}
	return s, nil
}

// ReadSessionFile reads and parses the session file of a profile directory.
func ReadSessionFile(profileDir string) (*Session, error) {
	path := SessionPath(profileDir)
	if path == "" {
		return nil, fmt.Errorf("no session file found in %s/sessionstore-backups", profileDir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	decompressed, err := DecompressMozLz4(data)
	if err != nil {
		return nil, fmt.Errorf("decompress session file: %w", err)
	}
	return ParseSession(decompressed)
}

// Source serves a profile's session file as a read-only tab inventory. The
// file is re-read on every query so refreshes pick up Firefox's periodic
// writes.
type Source struct {
	ProfileDir string
}

// NewSource returns a Source for profileDir.
func NewSource(profileDir string) *Source {
	return &Source{ProfileDir: profileDir}
}

func (s *Source) QueryAllTabs(ctx context.Context) ([]types.Tab, error) {
	sess, err := ReadSessionFile(s.ProfileDir)
	if err != nil {
		return nil, err
	}
	return sess.Tabs, nil
}

func (s *Source) QueryTabsInWindow(ctx context.Context, windowID int) ([]types.Tab, error) {
	sess, err := ReadSessionFile(s.ProfileDir)
	if err != nil {
		return nil, err
	}
	var out []types.Tab
	for _, t := range sess.Tabs {
		if t.WindowID == windowID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Source) CurrentWindowID(ctx context.Context) (int, error) {
	sess, err := ReadSessionFile(s.ProfileDir)
	if err != nil {
		return 0, err
	}
	return sess.CurrentWindowID, nil
}

func (s *Source) MoveTabs(context.Context, []int, int, int) error { return ErrReadOnly }
func (s *Source) CloseTabs(context.Context, []int) error          { return ErrReadOnly }
func (s *Source) FocusWindow(context.Context, int) error          { return ErrReadOnly }
func (s *Source) ActivateTab(context.Context, int) error          { return ErrReadOnly }
func (s *Source) OpenTab(context.Context, string) error           { return ErrReadOnly }
