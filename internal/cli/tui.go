package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/cadence/internal/ui"
	"github.com/tgienger/cadence/internal/ui/styles"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task board (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	a.logger.Info("tui started", "theme", a.cfg.Theme)
	styles.Use(a.cfg.Theme)
	model := ui.NewApp(ui.Env{
		DB:         a.db,
		Controller: a.ctl,
		Scheduler:  a.cfg.Scheduler(),
		Actor:      a.cfg.Actor,
		Logger:     a.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}
