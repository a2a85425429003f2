package cmd

import (
	"fmt"
	"io"

	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/storage"
	"github.com/lotas/tabdedupe/internal/types"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change stored preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsGet,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change stored preferences",
	Long: `Change stored preferences. Only the flags that are given are changed.

  tabdedupe prefs set --mode host+path-no-www --view all`,
	Args: cobra.NoArgs,
	RunE: runPrefsSet,
}

var (
	prefsMode     string
	prefsView     string
	prefsOverview bool
)

func init() {
	prefsSetCmd.Flags().StringVar(&prefsMode, "mode", "", "match mode")
	prefsSetCmd.Flags().StringVar(&prefsView, "view", "", "duplicates or all")
	prefsSetCmd.Flags().BoolVar(&prefsOverview, "overview", false, "expand the window overview")
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}

func printPrefs(w io.Writer, p types.Preferences) {
	fmt.Fprintf(w, "match_mode: %s\n", p.MatchMode)
	fmt.Fprintf(w, "view_mode: %s\n", p.ViewMode)
	fmt.Fprintf(w, "window_overview_expanded: %t\n", p.WindowOverviewExpanded)
}

func runPrefsGet(cmd *cobra.Command, args []string) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	defer applog.Close()

	p, err := storage.LoadPreferences(db)
	if err != nil {
		return err
	}
	printPrefs(cmd.OutOrStdout(), p)
	return nil
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("mode") && !flags.Changed("view") && !flags.Changed("overview") {
		return fmt.Errorf("nothing to set: pass --mode, --view or --overview")
	}

	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	defer applog.Close()

	p, err := storage.LoadPreferences(db)
	if err != nil {
		return err
	}
	if p.MatchMode, p.ViewMode, err = resolveModes(p, prefsMode, prefsView); err != nil {
		return err
	}
	if flags.Changed("overview") {
		p.WindowOverviewExpanded = prefsOverview
	}
	if err := storage.SavePreferences(db, p); err != nil {
		return err
	}
	applog.Info("prefs.set", "match_mode", p.MatchMode, "view_mode", p.ViewMode)
	printPrefs(cmd.OutOrStdout(), p)
	return nil
}
