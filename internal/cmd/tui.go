package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/tabdedupe/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	opts := tui.Options{Source: s.source}
	if s.srv != nil {
		opts.Events = s.srv.Events()
		opts.Waiting = fmt.Sprintf("Waiting for extension connection on :%d...", s.cfg.Port)
	}

	p := tea.NewProgram(tui.NewModel(s.ctrl, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
