package cmd

import (
	"errors"
	"fmt"

	"github.com/lotas/tabdedupe/internal/firefox"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List Firefox profiles usable with --profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := firefox.DiscoverProfiles()
		if err != nil {
			return fmt.Errorf("discover Firefox profiles: %w", err)
		}
		if len(profiles) == 0 {
			return errors.New("no Firefox profiles found")
		}

		out := cmd.OutOrStdout()
		for _, p := range profiles {
			suffix := ""
			if p.IsDefault {
				suffix = " [default]"
			}
			fmt.Fprintf(out, "%s (%s)%s\n", p.Name, p.Path, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
