package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the lab and play levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp builds the game and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	return app.Run(cmd.Context(), e.game, e.cfg.UserID)
}
