// Package tui is the interactive terminal front end: the duplicate group
// list, the window overview and the bulk actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/controller"
	"github.com/lotas/tabdedupe/internal/executor"
	"github.com/lotas/tabdedupe/internal/inventory"
	"github.com/lotas/tabdedupe/internal/planner"
	"github.com/lotas/tabdedupe/internal/server"
	"github.com/lotas/tabdedupe/internal/types"
)

// Controller is what the UI needs from *controller.Controller.
type Controller interface {
	Refresh(ctx context.Context) (*inventory.Snapshot, error)
	Snapshot() *inventory.Snapshot
	Preferences() types.Preferences
	SetPreferences(ctx context.Context, p types.Preferences) error
	Apply(ctx context.Context, req controller.ActionRequest) (controller.Result, error)
	SwitchTo(ctx context.Context, tabID int) error
	WindowHosts(ctx context.Context, windowID int) ([]analyzer.HostCount, error)
	AcceptReview(ctx context.Context) error
	DismissReview(ctx context.Context) error
	DisableReview(ctx context.Context) error
}

// Options configures the model.
type Options struct {
	// Source labels the tab source in the top bar.
	Source string
	// Waiting is shown until the first snapshot arrives.
	Waiting string
	// Events delivers host change notifications; nil for offline sources.
	Events <-chan server.IncomingMsg
}

// --- Messages ---

type snapshotMsg struct {
	snap *inventory.Snapshot
	err  error
}

type hostEventMsg struct{ event server.IncomingMsg }

type eventsClosedMsg struct{}

type actionDoneMsg struct {
	res controller.Result
	err error
}

type switchDoneMsg struct {
	tabID int
	err   error
}

type hostsMsg struct {
	windowID int
	hosts    []analyzer.HostCount
	err      error
}

type prefsSavedMsg struct {
	err     error
	refresh bool
}

type reviewDoneMsg struct {
	status string
	err    error
}

// --- Commands ---

func refreshCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctrl.Refresh(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func listenEvents(events <-chan server.IncomingMsg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return hostEventMsg{event: ev}
	}
}

func applyCmd(ctrl Controller, req controller.ActionRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Apply(context.Background(), req)
		return actionDoneMsg{res: res, err: err}
	}
}

func switchCmd(ctrl Controller, tabID int) tea.Cmd {
	return func() tea.Msg {
		return switchDoneMsg{tabID: tabID, err: ctrl.SwitchTo(context.Background(), tabID)}
	}
}

func hostsCmd(ctrl Controller, windowID int) tea.Cmd {
	return func() tea.Msg {
		hosts, err := ctrl.WindowHosts(context.Background(), windowID)
		return hostsMsg{windowID: windowID, hosts: hosts, err: err}
	}
}

func savePrefsCmd(ctrl Controller, p types.Preferences, refresh bool) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: ctrl.SetPreferences(context.Background(), p), refresh: refresh}
	}
}

func reviewCmd(fn func(context.Context) error, status string) tea.Cmd {
	return func() tea.Msg {
		return reviewDoneMsg{status: status, err: fn(context.Background())}
	}
}

// --- Model ---

const statusRefreshing = "refreshing…"

type pane int

const (
	paneGroups pane = iota
	paneWindows
)

type Model struct {
	ctrl  Controller
	opts  Options
	snap  *inventory.Snapshot
	prefs types.Preferences

	// UI state
	tree       TreeModel
	windows    WindowList
	focus      pane
	search     textinput.Model
	searching  bool
	picker     ModePicker
	showPicker bool
	showReview bool
	loading    bool
	busy       bool
	status     string
	statusErr  bool
	width      int
	height     int
}

func NewModel(ctrl Controller, opts Options) Model {
	si := textinput.New()
	si.Placeholder = "search title or URL..."
	si.CharLimit = 200
	si.Prompt = "/ "

	prefs := ctrl.Preferences()
	m := Model{
		ctrl:    ctrl,
		opts:    opts,
		prefs:   prefs,
		search:  si,
		loading: true,
	}
	m.windows.Expanded = prefs.WindowOverviewExpanded
	m.tree = NewTreeModel(nil, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.ctrl), listenEvents(m.opts.Events))
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// applySnapshot installs snap unless a newer one is already shown.
func (m *Model) applySnapshot(snap *inventory.Snapshot) bool {
	if snap == nil {
		return false
	}
	if m.snap != nil && snap.Generation < m.snap.Generation {
		return false
	}
	m.loading = false
	m.snap = snap
	m.rebuild()
	return true
}

// rebuild derives the visible list from the snapshot, the view mode and the
// search term.
func (m *Model) rebuild() {
	if m.snap == nil {
		return
	}
	term := strings.TrimSpace(m.search.Value())
	groups := analyzer.FilterGroups(m.snap.View(m.prefs.ViewMode), term)

	prev := m.tree
	m.tree = NewTreeModel(groups, m.snap.CurrentWindowID)
	m.tree.Restore(prev)
	if term != "" {
		m.tree.ExpandAll()
	}
	switch {
	case term != "":
		m.tree.EmptyText = fmt.Sprintf("No tabs match %q.", term)
	case m.prefs.ViewMode == types.ViewAll:
		m.tree.EmptyText = "No tabs."
	default:
		m.tree.EmptyText = "No duplicate tabs."
	}
	m.windows.SetWindows(m.snap.Windows)
}

func (m *Model) layout() {
	treeWidth := m.width * TreeWidthPct / 100
	sideWidth := m.width - treeWidth - 4 // borders
	paneHeight := m.height - 6           // top bar, search line, bottom bars
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.tree.Width = treeWidth
	m.tree.Height = paneHeight
	m.windows.Width = sideWidth
	m.windows.Height = paneHeight
	m.search.Width = treeWidth - 4
	m.picker.Width = m.width
	m.picker.Height = m.height
}

// selectedWindowHosts loads the host breakdown of the highlighted window
// unless it is cached.
func (m Model) selectedWindowHosts() tea.Cmd {
	if !m.windows.Expanded {
		return nil
	}
	win, ok := m.windows.Selected()
	if !ok {
		return nil
	}
	if _, cached := m.windows.Hosts[win.WindowID]; cached {
		return nil
	}
	return hostsCmd(m.ctrl, win.WindowID)
}

func (m Model) act(req controller.ActionRequest) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.setStatus(fmt.Sprintf("%s…", req.Op), false)
	return m, applyCmd(m.ctrl, req)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		if errors.Is(msg.err, inventory.ErrSuperseded) {
			return m, nil
		}
		// Keep waiting; the extension sends a snapshot event once it connects.
		if m.loading && m.opts.Events != nil && errors.Is(msg.err, server.ErrNotConnected) {
			return m, nil
		}
		if m.applySnapshot(msg.snap) {
			if m.status == statusRefreshing {
				m.setStatus("", false)
			}
			return m, m.selectedWindowHosts()
		}
		if msg.err != nil {
			m.loading = false
			m.setStatus(msg.err.Error(), true)
		}
		return m, nil

	case hostEventMsg:
		applog.Info("host.event", "type", msg.event.Type)
		return m, tea.Batch(refreshCmd(m.ctrl), listenEvents(m.opts.Events))

	case eventsClosedMsg:
		return m, nil

	case actionDoneMsg:
		m.busy = false
		var partial *executor.PartialFailureError
		if msg.err != nil && !errors.As(msg.err, &partial) {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(describeOutcome(msg.res), msg.err != nil)
		}
		if msg.res.PromptReview {
			m.showReview = true
		}
		m.applySnapshot(m.ctrl.Snapshot())
		return m, m.selectedWindowHosts()

	case switchDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("switched to tab %d", msg.tabID), false)
		}
		return m, nil

	case hostsMsg:
		if msg.err != nil {
			applog.Error("window.hosts", msg.err, "window", msg.windowID)
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		if m.windows.Hosts == nil {
			m.windows.Hosts = make(map[int][]analyzer.HostCount)
		}
		m.windows.Hosts[msg.windowID] = msg.hosts
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		}
		if msg.refresh {
			return m, refreshCmd(m.ctrl)
		}
		return m, nil

	case reviewDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else if msg.status != "" {
			m.setStatus(msg.status, false)
		}
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showReview {
		switch msg.String() {
		case "y", "enter":
			m.showReview = false
			return m, reviewCmd(m.ctrl.AcceptReview, "thanks! review page opened")
		case "n", "esc":
			m.showReview = false
			return m, reviewCmd(m.ctrl.DismissReview, "")
		case "N":
			m.showReview = false
			return m, reviewCmd(m.ctrl.DisableReview, "review prompt turned off")
		}
		return m, nil
	}

	if m.showPicker {
		switch msg.String() {
		case "up", "k":
			m.picker.MoveUp()
		case "down", "j":
			m.picker.MoveDown()
		case "enter":
			m.showPicker = false
			mode := m.picker.Selected().Mode
			if mode == m.prefs.MatchMode {
				return m, nil
			}
			m.prefs.MatchMode = mode
			return m, savePrefsCmd(m.ctrl, m.prefs, true)
		case "esc":
			m.showPicker = false
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.rebuild()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.rebuild()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.focus = paneGroups
		m.windows.Focused = false
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.rebuild()
		}
		return m, nil
	case "tab":
		if m.focus == paneGroups && m.windows.Expanded {
			m.focus = paneWindows
		} else {
			m.focus = paneGroups
		}
		m.windows.Focused = m.focus == paneWindows
		return m, m.selectedWindowHosts()
	case "m":
		m.picker = NewModePicker(m.prefs.MatchMode)
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.showPicker = true
		return m, nil
	case "v":
		if m.prefs.ViewMode == types.ViewDuplicates {
			m.prefs.ViewMode = types.ViewAll
		} else {
			m.prefs.ViewMode = types.ViewDuplicates
		}
		m.rebuild()
		return m, savePrefsCmd(m.ctrl, m.prefs, false)
	case "w":
		m.prefs.WindowOverviewExpanded = !m.prefs.WindowOverviewExpanded
		m.windows.Expanded = m.prefs.WindowOverviewExpanded
		if !m.windows.Expanded {
			m.focus = paneGroups
			m.windows.Focused = false
		}
		return m, tea.Batch(savePrefsCmd(m.ctrl, m.prefs, false), m.selectedWindowHosts())
	case "r":
		m.setStatus(statusRefreshing, false)
		return m, refreshCmd(m.ctrl)
	case "C":
		return m.act(controller.ActionRequest{Op: types.OpConsolidateDuplicates})
	case "s":
		return m.act(controller.ActionRequest{Op: types.OpConsolidateSingleWindows})
	case "u":
		return m.act(controller.ActionRequest{Op: types.OpConsolidateUnique})
	}

	if m.focus == paneWindows {
		return m.handleWindowKey(msg)
	}
	return m.handleGroupKey(msg)
}

func (m Model) handleGroupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	node := m.tree.SelectedNode()

	switch msg.String() {
	case "up", "k":
		m.tree.MoveUp()
	case "down", "j":
		m.tree.MoveDown()
	case "h", "left":
		m.tree.CollapseOrParent()
	case "l", "right":
		m.tree.ExpandOrEnter()
	case "enter":
		if node != nil && node.Tab != nil {
			return m, switchCmd(m.ctrl, node.Tab.ID)
		}
		m.tree.Toggle()
	case "d":
		if node != nil {
			return m.act(controller.ActionRequest{Op: types.OpKeepFirst, Key: node.Group.Key})
		}
	case "o":
		if node != nil && node.Tab != nil {
			return m.act(controller.ActionRequest{Op: types.OpKeepOnly, Key: node.Group.Key, TabID: node.Tab.ID})
		}
	case "x":
		if node != nil && node.Tab != nil {
			return m.act(controller.ActionRequest{Op: types.OpCloseTab, TabID: node.Tab.ID})
		}
	case "X":
		if node != nil {
			return m.act(controller.ActionRequest{Op: types.OpCloseGroup, Key: node.Group.Key})
		}
	case "c":
		if node != nil {
			return m.act(controller.ActionRequest{Op: types.OpConsolidateGroup, Key: node.Group.Key})
		}
	}
	return m, nil
}

func (m Model) handleWindowKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.windows.MoveUp()
		return m, m.selectedWindowHosts()
	case "down", "j":
		m.windows.MoveDown()
		return m, m.selectedWindowHosts()
	case "M", "enter":
		win, ok := m.windows.Selected()
		if !ok || win.IsCurrent {
			return m, nil
		}
		return m.act(controller.ActionRequest{Op: types.OpMergeWindow, SourceWindowID: win.WindowID})
	}
	return m, nil
}

// describeOutcome is the status line after an action.
func describeOutcome(res controller.Result) string {
	out := res.Outcome
	if out.NoOp {
		return fmt.Sprintf("%s: nothing to do", res.Plan.Operation)
	}
	var parts []string
	if n := len(out.Closed); n > 0 {
		parts = append(parts, "closed "+pluralTabs(n))
	}
	if n := len(out.Moved); n > 0 {
		parts = append(parts, fmt.Sprintf("moved %s to window %d", pluralTabs(n), res.Plan.DestinationWindowID))
	}
	if n := len(out.Failed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if out.FocusError != "" {
		parts = append(parts, "could not focus window")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %s", res.Plan.Operation, planner.Describe(res.Plan))
	}
	return fmt.Sprintf("%s: %s", res.Plan.Operation, strings.Join(parts, ", "))
}

func (m Model) View() string {
	if m.loading {
		if m.opts.Waiting != "" {
			return "\n  " + m.opts.Waiting + "\n"
		}
		return "\n  Loading tabs...\n"
	}

	if m.showPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	if m.showReview {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, reviewPromptView())
	}

	var stats types.Stats
	if m.snap != nil {
		stats = m.snap.Stats()
	}
	topBar := renderNavbar(m.prefs.ViewMode, m.opts.Source, stats, m.prefs.MatchMode, m.width)

	treeBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(m.focus == paneGroups)).
		Width(m.tree.Width).
		Height(m.tree.Height)
	sideBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(m.focus == paneWindows)).
		Width(m.windows.Width).
		Height(m.windows.Height)

	var left string
	if m.snap != nil && m.snap.Err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		left = errStyle.Render("Error loading tabs") + "\n\n" + m.snap.Err.Error() + "\n\nPress r to retry."
	} else {
		left = m.tree.View()
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top, treeBorder.Render(left), sideBorder.Render(m.windows.View()))

	searchLine := ""
	if m.searching || m.search.Value() != "" {
		searchLine = " " + m.search.View()
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	if m.statusErr {
		statusStyle = statusStyle.Foreground(lipgloss.Color("196"))
	}
	statusBar := statusStyle.Render(m.status)

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	var help string
	if m.focus == paneWindows {
		help = "↑↓ select window · M merge into current · tab groups · "
	} else {
		help = "↑↓/jk navigate · enter switch/expand · d keep first · o keep this · x close tab · X close group · c gather · "
	}
	help += "C gather dups · s single windows · u unique · / search · m mode · v view · w windows · r refresh · q quit"
	helpBar := helpStyle.Render(help)

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panes, searchLine, statusBar, helpBar)
}

func borderColor(focused bool) lipgloss.Color {
	if focused {
		return lipgloss.Color("62")
	}
	return lipgloss.Color("240")
}
