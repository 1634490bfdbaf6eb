package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/llm"
	"github.com/abhisek/chemquest/internal/tutor"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI tutor a chemistry question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newStoreEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		cfg, ok := llm.Resolve()
		if !ok {
			return errors.New("no LLM provider configured; set CHEMQUEST_LLM_PROVIDER or an API key such as ANTHROPIC_API_KEY")
		}
		provider, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.logger)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}

		question := strings.Join(args, " ")
		ch, err := tutor.NewChat(provider).Stream(ctx, []llm.Message{{Role: llm.RoleUser, Content: question}})
		if err != nil {
			return err
		}
		for chunk := range ch {
			if chunk.Err != nil {
				fmt.Println()
				return fmt.Errorf("tutor: %w", chunk.Err)
			}
			fmt.Print(chunk.Text)
		}
		fmt.Println()
		return nil
	},
}
