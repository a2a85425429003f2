package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabdedupe/internal/types"
)

// TreeNode represents a visible row in the group list. Group is always set;
// Tab is nil on group headers.
type TreeNode struct {
	Group *types.Group
	Tab   *types.Tab
}

// TreeModel manages the collapsible list of duplicate groups.
type TreeModel struct {
	Groups          []types.Group
	Expanded        map[string]bool // group key -> expanded
	CurrentWindowID int
	EmptyText       string
	Cursor          int
	Offset          int // scroll offset
	Width           int
	Height          int
}

func NewTreeModel(groups []types.Group, currentWindowID int) TreeModel {
	expanded := make(map[string]bool, len(groups))
	for _, g := range groups {
		expanded[g.Key] = len(g.Tabs) > 1
	}
	return TreeModel{
		Groups:          groups,
		Expanded:        expanded,
		CurrentWindowID: currentWindowID,
	}
}

// VisibleNodes returns the flat list of currently visible nodes.
func (m TreeModel) VisibleNodes() []TreeNode {
	var nodes []TreeNode
	for i := range m.Groups {
		g := &m.Groups[i]
		nodes = append(nodes, TreeNode{Group: g})
		if m.Expanded[g.Key] {
			for j := range g.Tabs {
				nodes = append(nodes, TreeNode{Group: g, Tab: &g.Tabs[j]})
			}
		}
	}
	return nodes
}

// SelectedNode returns the node under the cursor, or nil.
func (m TreeModel) SelectedNode() *TreeNode {
	nodes := m.VisibleNodes()
	if m.Cursor >= 0 && m.Cursor < len(nodes) {
		return &nodes[m.Cursor]
	}
	return nil
}

// SelectedGroup returns the group of the selected row, header or tab.
func (m TreeModel) SelectedGroup() *types.Group {
	if node := m.SelectedNode(); node != nil {
		return node.Group
	}
	return nil
}

// ExpandAll opens every group; used while a search term is active.
func (m *TreeModel) ExpandAll() {
	for _, g := range m.Groups {
		m.Expanded[g.Key] = true
	}
}

// Restore carries cursor and expansion state over from a previous list,
// so a refresh does not jump the selection.
func (m *TreeModel) Restore(prev TreeModel) {
	for _, g := range m.Groups {
		if exp, ok := prev.Expanded[g.Key]; ok {
			m.Expanded[g.Key] = exp
		}
	}
	m.Width = prev.Width
	m.Height = prev.Height
	m.Cursor = prev.Cursor
	m.Offset = prev.Offset
	m.clamp()
}

func (m *TreeModel) clamp() {
	n := len(m.VisibleNodes())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m TreeModel) visibleRows() int {
	rows := m.Height - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// MoveUp moves the cursor up.
func (m *TreeModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

// MoveDown moves the cursor down.
func (m *TreeModel) MoveDown() {
	nodes := m.VisibleNodes()
	if m.Cursor < len(nodes)-1 {
		m.Cursor++
	}
	if rows := m.visibleRows(); m.Cursor >= m.Offset+rows {
		m.Offset = m.Cursor - rows + 1
	}
}

// Toggle expands or collapses the selected group.
func (m *TreeModel) Toggle() {
	node := m.SelectedNode()
	if node == nil || node.Tab != nil {
		return
	}
	m.Expanded[node.Group.Key] = !m.Expanded[node.Group.Key]
}

// CollapseOrParent collapses the selected group if expanded, or jumps to the
// group header if the cursor is on a tab.
func (m *TreeModel) CollapseOrParent() {
	node := m.SelectedNode()
	if node == nil {
		return
	}
	if node.Tab == nil {
		m.Expanded[node.Group.Key] = false
		return
	}
	nodes := m.VisibleNodes()
	for i := m.Cursor - 1; i >= 0; i-- {
		if nodes[i].Tab == nil {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			return
		}
	}
}

// ExpandOrEnter expands the selected group if collapsed, or moves onto its
// first tab.
func (m *TreeModel) ExpandOrEnter() {
	node := m.SelectedNode()
	if node == nil || node.Tab != nil {
		return
	}
	if !m.Expanded[node.Group.Key] {
		m.Expanded[node.Group.Key] = true
		return
	}
	nodes := m.VisibleNodes()
	if m.Cursor+1 < len(nodes) && nodes[m.Cursor+1].Tab != nil {
		m.MoveDown()
	}
}

// View renders the list.
func (m TreeModel) View() string {
	nodes := m.VisibleNodes()
	if len(nodes) == 0 {
		if m.EmptyText != "" {
			return m.EmptyText
		}
		return "No duplicate tabs."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}

	var b strings.Builder
	end := m.Offset + visibleRows
	if end > len(nodes) {
		end = len(nodes)
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	groupStyle := lipgloss.NewStyle().Bold(true)
	dupCountStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33"))  // blue
	keptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))      // green
	otherWinStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	for i := m.Offset; i < end; i++ {
		node := nodes[i]
		var line string

		if node.Tab == nil {
			icon := "▶"
			if m.Expanded[node.Group.Key] {
				icon = "▼"
			}
			count := fmt.Sprintf("(%d tabs)", len(node.Group.Tabs))
			if len(node.Group.Tabs) > 1 {
				count = dupCountStyle.Render(count)
			}
			line = groupStyle.Render(icon+" "+node.Group.Key) + " " + count
		} else {
			tab := node.Tab
			marker := "  "
			if len(node.Group.Tabs) > 1 && node.Group.Tabs[0].ID == tab.ID {
				marker = keptStyle.Render("✓ ")
			}
			win := fmt.Sprintf("w%d", tab.WindowID)
			if tab.WindowID != m.CurrentWindowID {
				win = otherWinStyle.Render(win)
			} else {
				win = dimStyle.Render(win)
			}
			label := tab.Title
			if label == "" {
				label = tab.URL
			}
			maxLen := m.Width - 10
			if maxLen < 10 {
				maxLen = 10
			}
			if r := []rune(label); len(r) > maxLen {
				label = string(r[:maxLen-1]) + "…"
			}
			if tab.Discarded {
				label += dimStyle.Render(" ·z")
			}
			line = "  " + marker + win + " " + label
		}

		if i == m.Cursor {
			if pad := m.Width - lipgloss.Width(line); pad > 0 {
				line += strings.Repeat(" ", pad)
			}
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
