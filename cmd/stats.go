package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/game"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, level progress and recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		p, err := e.game.Profile(ctx, e.cfg.UserID)
		if err != nil {
			return err
		}

		completed := 0
		for _, l := range e.registry.Levels() {
			if lp, _ := p.Level(l.ID); lp.Completed {
				completed++
			}
		}

		fmt.Printf("Profile:    %s\n", p.UserID)
		fmt.Printf("Total XP:   %d\n", p.Stats.TotalXP)
		fmt.Printf("This week:  %d\n", p.Stats.WeeklyXPAt(time.Now()))
		fmt.Printf("Sessions:   %d\n", p.Stats.SessionsPlayed)
		fmt.Printf("Levels:     %d/%d complete\n", completed, e.registry.Len())
		fmt.Printf("Mistakes:   %d in the book\n", len(p.Mistakes))

		recent, _ := cmd.Flags().GetInt("recent")
		if recent <= 0 {
			return nil
		}
		evs, err := e.game.History(ctx, e.cfg.UserID, recent)
		if err != nil {
			return err
		}
		if len(evs) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Recent sessions")
		fmt.Println(strings.Repeat("─", 64))
		for _, ev := range evs {
			detail := ""
			if ev.Action == game.ActionComplete {
				detail = fmt.Sprintf("+%d XP, %d/%d first try", ev.XP, ev.FirstTry, ev.Questions)
			}
			fmt.Printf("%-16s  %-12s  %-9s  %s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.LevelID, ev.Action, detail)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("recent", "n", 10, "Number of recent sessions to show (0 to hide)")
}
