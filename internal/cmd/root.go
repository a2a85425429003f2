// Package cmd holds the tabdedupe command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/lotas/tabdedupe/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// vp holds the merged configuration for every command.
var vp = viper.New()

var (
	cfgFile string
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "tabdedupe",
	Short: "Find and consolidate duplicate browser tabs",
	Long: `tabdedupe groups your open tabs by canonical URL, shows the duplicates
and closes or gathers them in one keystroke.

Without a subcommand it starts the interactive view. Tabs come from the
browser extension over a local WebSocket, or read-only from a Firefox
session file with --offline or --profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/tabdedupe/config.yaml)")
	pf.String("profile", "", "read tabs from this Firefox profile's session file (read-only)")
	pf.BoolVar(&offline, "offline", false, "read tabs from the default Firefox profile (read-only)")
	pf.Int("port", 0, "WebSocket port for the browser extension")
	_ = vp.BindPFlag("profile", pf.Lookup("profile"))
	_ = vp.BindPFlag("port", pf.Lookup("port"))
}

func initConfig() {
	if err := config.Init(vp, cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
