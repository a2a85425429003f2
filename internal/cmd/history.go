package cmd

import (
	"io"
	"time"

	"github.com/lotas/tabdedupe/internal/applog"
	"github.com/lotas/tabdedupe/internal/export"
	"github.com/lotas/tabdedupe/internal/storage"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer applog.Close()

		records, err := storage.ListActions(db, historyLimit)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), export.History(records, time.Now()))
		return err
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of actions to show")
	rootCmd.AddCommand(historyCmd)
}
