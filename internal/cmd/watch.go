package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chrisgilldc/chambers/internal/tui/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live terminal dashboard of both chambers",
	Long: `Open an interactive dashboard showing each chamber's session state,
latest floor activity, and refresh schedule. The dashboard polls on the
same adaptive schedule as the daemon.

Keys: r forces a refresh, ? toggles help, q quits.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch needs a terminal; use 'chambers status' for plain output")
	}

	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	model := watch.NewModel(buildChambers(settings, logger))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
