package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/mistakes"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List levels with your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.game.Profile(cmd.Context(), e.cfg.UserID)
		if err != nil {
			return err
		}

		fmt.Printf("%-12s  %-28s  %-8s  %6s  %7s  %8s\n",
			"ID", "Title", "Status", "Best", "Mastery", "Mistakes")
		fmt.Println(strings.Repeat("─", 80))

		for _, l := range e.registry.Levels() {
			lp, _ := p.Level(l.ID)
			status := "locked"
			switch {
			case lp.Completed:
				status = "done"
			case lp.Unlocked:
				status = "open"
			}
			fmt.Printf("%-12s  %-28s  %-8s  %6d  %6.0f%%  %8d\n",
				l.ID, truncate(l.Title, 28), status, lp.Score, lp.Mastery()*100,
				len(mistakes.Filter(p.Mistakes, l.ID)))
		}

		fmt.Printf("\n%d levels\n", e.registry.Len())
		return nil
	},
}

var levelsShowCmd = &cobra.Command{
	Use:   "show <level-id>",
	Short: "Show a level's phases and questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		l, ok := reg.Level(args[0])
		if !ok {
			return fmt.Errorf("no level %q (have: %s)", args[0], strings.Join(reg.LevelIDs(), ", "))
		}

		answers, _ := cmd.Flags().GetBool("answers")

		fmt.Printf("%s — %s\n", l.ID, l.Title)
		if l.Concept != nil {
			fmt.Printf("Concept: %s\n", l.Concept.Title)
		}
		fmt.Printf("Kinds:   %s\n", kindCounts(l))
		for _, ph := range l.Phases {
			fmt.Printf("\n── %s (%d questions) ──\n", ph.Title, len(ph.Questions))
			for _, q := range ph.Questions {
				fmt.Printf("  %-18s  %-16s  %s\n", q.ID, q.Kind().DisplayName(), truncate(q.Prompt, 60))
				if answers {
					fmt.Printf("  %18s  → %s\n", "", grading.CanonicalText(q))
				}
			}
		}
		fmt.Printf("\n%d questions\n", l.QuestionCount())
		return nil
	},
}

// kindCounts tallies a level's questions by kind in display order.
func kindCounts(l curriculum.Level) string {
	counts := make(map[curriculum.Kind]int)
	for _, ph := range l.Phases {
		for _, q := range ph.Questions {
			counts[q.Kind()]++
		}
	}
	var parts []string
	for _, k := range curriculum.AllKinds() {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(k.DisplayName())))
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	levelsShowCmd.Flags().Bool("answers", false, "Print the canonical answer under each question")

	levelsCmd.AddCommand(levelsShowCmd)
}
