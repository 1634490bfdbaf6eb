package cmd

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/grading"
	"github.com/abhisek/chemquest/internal/session"
	"github.com/abhisek/chemquest/internal/ui/components"
)

var previewCmd = &cobra.Command{
	Use:   "preview <level-id>",
	Short: "Answer a level's questions in plain text (no database)",
	Long: `Play through one level's questions line by line.

This is a stateless authoring tool: no profile, no XP, no events. Combine
with --content to check a level file before publishing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Bool("all", false, "Ask every question instead of a session's sample")
	previewCmd.Flags().Uint64("seed", 0, "Sampling seed (default: time-based)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	level, ok := reg.Level(args[0])
	if !ok {
		return fmt.Errorf("no level %q (have: %s)", args[0], strings.Join(reg.LevelIDs(), ", "))
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	phases := session.SelectRuntimePhases(level, nil, all, rng)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Level: %s — %s\n", level.ID, level.Title)
	if level.Concept != nil {
		fmt.Printf("\n%s\n%s\n", level.Concept.Title, components.Formula(level.Concept.Body))
	}

	var correct, total int
	for _, ph := range phases {
		fmt.Printf("\n══ %s ══\n", ph.Title)
		for i, q := range ph.Questions {
			total++
			fmt.Printf("\n── Question %d/%d (%s) ──\n", i+1, len(ph.Questions), q.Kind().DisplayName())
			fmt.Println(components.Formula(q.Prompt))

			in, ok := readAnswer(scanner, q)
			if !ok {
				fmt.Println("\n(input closed)")
				fmt.Printf("── Summary: %d/%d correct ──\n", correct, total-1)
				return nil
			}
			if !grading.Complete(q, in) {
				fmt.Println("(skipped)")
				continue
			}

			right, gerr := grading.Grade(q, in)
			switch {
			case gerr != nil:
				fmt.Printf("\033[33m! Cannot grade:\033[0m %v\n", gerr)
			case right:
				correct++
				fmt.Println("\033[32m✓ Correct!\033[0m")
			default:
				fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", components.Formula(grading.CanonicalText(q)))
			}
			if q.Explanation != "" {
				fmt.Printf("Explanation: %s\n", components.Formula(q.Explanation))
			}
		}
	}

	fmt.Printf("\n── Summary: %d/%d correct ──\n", correct, total)
	return nil
}

// readAnswer prompts for q's kind and reads one answer. ok is false when
// stdin is exhausted.
func readAnswer(scanner *bufio.Scanner, q curriculum.Question) (grading.Input, bool) {
	line := func(prompt string) (string, bool) {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	switch p := q.Payload.(type) {
	case curriculum.MultipleChoice:
		printOptions(p.Options)
		s, ok := line("\nYour answer (number): ")
		return grading.Choose(choiceIndex(s, len(p.Options))), ok

	case curriculum.Deduction:
		for i, c := range p.Clues {
			fmt.Printf("  Test %d: %s → %s\n", i+1, c.Stimulus, components.Formula(c.Result))
		}
		fmt.Println("Suspects:")
		printOptions(p.Suspects)
		s, ok := line("\nWho is it (number): ")
		return grading.Choose(choiceIndex(s, len(p.Suspects))), ok

	case curriculum.FreeText:
		s, ok := line("\nYour answer: ")
		return grading.Type(s), ok

	case curriculum.Flashcard:
		if _, ok := line("(Enter to flip) "); !ok {
			return grading.Blank(), false
		}
		fmt.Println(components.Formula(p.Back))
		s, ok := line("Did you recall it? [y/n]: ")
		return grading.Recall(strings.EqualFold(s, "y")), ok

	case curriculum.Ordering:
		fmt.Printf("Template: %s\n", components.Formula(p.Template))
		for i, it := range p.Items {
			fmt.Printf("  %d) %s\n", i+1, components.Formula(it.Content))
		}
		s, ok := line("\nItem numbers in slot order (e.g. 2 1 3): ")
		var seq []string
		for _, f := range strings.Fields(s) {
			if i := choiceIndex(f, len(p.Items)); i != grading.NoChoice {
				seq = append(seq, p.Items[i].Content)
			}
		}
		return grading.Place(seq...), ok
	}
	return grading.Blank(), true
}

func printOptions(opts []string) {
	for i, o := range opts {
		fmt.Printf("  %d) %s\n", i+1, components.Formula(o))
	}
}

// choiceIndex parses a 1-based choice, returning grading.NoChoice when
// it is not a number in range.
func choiceIndex(s string, n int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 || i > n {
		return grading.NoChoice
	}
	return i - 1
}
