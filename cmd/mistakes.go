package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "List the mistake book, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if level != "" {
			if _, ok := e.registry.Level(level); !ok {
				return fmt.Errorf("no level %q", level)
			}
		}
		book, err := e.game.Mistakes(cmd.Context(), e.cfg.UserID, level)
		if err != nil {
			return err
		}
		if len(book) == 0 {
			fmt.Println("The mistake book is empty.")
			return nil
		}

		fmt.Printf("%-16s  %-12s  %-40s  %s\n", "Recorded", "Level", "Question", "Your answer")
		fmt.Println(strings.Repeat("─", 100))
		for _, m := range book {
			fmt.Printf("%-16s  %-12s  %-40s  %s\n",
				m.CreatedAt.Local().Format("2006-01-02 15:04"),
				m.LevelID,
				truncate(m.Question.Prompt, 40),
				truncate(m.Answer, 28))
		}
		fmt.Printf("\n%d to review. Retry them from the Mistake Book in `chemquest play`.\n", len(book))
		return nil
	},
}

func init() {
	mistakesCmd.Flags().StringP("level", "l", "", "Only show mistakes from this level")
}
