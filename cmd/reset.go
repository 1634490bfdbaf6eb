package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a profile's progress",
	Long:  "Delete XP, level progress and the mistake book for the selected profile. Session history is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		userID := e.cfg.UserID
		if !yes {
			fmt.Printf("Delete all progress for %q? [y/N] ", userID)
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := e.game.Reset(cmd.Context(), userID); err != nil {
			return err
		}
		e.logger.Info("profile reset", "user_id", userID)
		fmt.Printf("Progress for %q deleted.\n", userID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
