package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/export"
	"github.com/lotas/tabdedupe/internal/types"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups [search]",
	Short: "List duplicate tab groups",
	Long: `List tabs grouped by canonical URL. By default only groups with more
than one tab are shown; use --view all to list every group. An optional
search term keeps the groups where any tab's title, URL or key matches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGroups,
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List browser windows with tab counts",
	Args:  cobra.NoArgs,
	RunE:  runWindows,
}

var (
	groupsMode  string
	groupsView  string
	groupsJSON  bool
	windowHosts bool
	windowsJSON bool
)

func init() {
	groupsCmd.Flags().StringVar(&groupsMode, "mode", "", "match mode: host, host+path, host+path-no-www, host+path+qs (default from preferences)")
	groupsCmd.Flags().StringVar(&groupsView, "view", "", "duplicates or all (default from preferences)")
	groupsCmd.Flags().BoolVar(&groupsJSON, "json", false, "output JSON instead of markdown")
	rootCmd.AddCommand(groupsCmd)

	windowsCmd.Flags().BoolVar(&windowHosts, "hosts", false, "show the host breakdown of each window")
	windowsCmd.Flags().BoolVar(&windowsJSON, "json", false, "output JSON instead of text")
	rootCmd.AddCommand(windowsCmd)
}

// resolveModes applies flag overrides on top of the stored preferences.
func resolveModes(prefs types.Preferences, mode, view string) (types.MatchMode, types.ViewMode, error) {
	m, v := prefs.MatchMode, prefs.ViewMode
	if mode != "" {
		parsed, err := types.ParseMatchMode(mode)
		if err != nil {
			return "", "", err
		}
		m = parsed
	}
	if view != "" {
		parsed, err := types.ParseViewMode(view)
		if err != nil {
			return "", "", err
		}
		v = parsed
	}
	return m, v, nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	mode, view, err := resolveModes(s.ctrl.Preferences(), groupsMode, groupsView)
	if err != nil {
		return err
	}
	if err := s.waitForBrowser(cmd.Context()); err != nil {
		return err
	}
	snap, err := s.ctrl.RefreshMode(cmd.Context(), mode)
	if err != nil {
		return err
	}

	var term string
	if len(args) == 1 {
		term = args[0]
	}
	report := export.NewReport(s.source, snap, view, term)

	out := cmd.OutOrStdout()
	if groupsJSON {
		data, err := export.JSON(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, data)
		return err
	}
	_, err = io.WriteString(out, export.Markdown(report))
	return err
}

func runWindows(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.waitForBrowser(cmd.Context()); err != nil {
		return err
	}
	snap, err := s.ctrl.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if windowsJSON {
		data, err := export.JSON(export.NewReport(s.source, snap, types.ViewDuplicates, ""))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, data)
		return err
	}

	if len(snap.Windows) == 0 {
		fmt.Fprintln(out, "No windows.")
		return nil
	}
	for _, w := range snap.Windows {
		current := ""
		if w.IsCurrent {
			current = " (current)"
		}
		fmt.Fprintf(out, "Window %d: %d tabs%s\n", w.WindowID, w.TabCount, current)
		if !windowHosts {
			continue
		}
		hosts := analyzer.HostBreakdown(analyzer.TabsInWindow(snap.Tabs, w.WindowID, analyzer.PageFilter{InternalPrefixes: s.cfg.InternalPrefixes}))
		for _, h := range hosts {
			fmt.Fprintf(out, "  %3d  %s\n", h.Count, h.Host)
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", 30))
	st := snap.Stats()
	fmt.Fprintf(out, "%d tabs in %d windows\n", st.TotalTabs, st.TotalWindows)
	return nil
}
