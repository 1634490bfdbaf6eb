package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chemquest/internal/llm"
	"github.com/abhisek/chemquest/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		if purpose != "" && !knownPurpose(llm.Purpose(purpose)) {
			return fmt.Errorf("unknown purpose %q (want one of %s)", purpose, purposeNames())
		}

		e, err := newStoreEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-11s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("\u2500", 97))
		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-11s  %-28s  %-6d  %-6d  %-7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(ev.Purpose, 11),
				truncate(ev.Model, 28),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := newStoreEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		s := e.store

		ctx := cmd.Context()
		ev, err := s.EventRepo().GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("\u2500", 60)

		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", ev.Provider)
		fmt.Printf("Model:     %s\n", ev.Model)
		fmt.Printf("Purpose:   %s (%s)\n", ev.Purpose, llm.Purpose(ev.Purpose).Label())
		fmt.Printf("Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		if c, ok := llm.LookupCost(ev.Model); ok {
			fmt.Printf("Cost:      %s\n", formatCost(c.Cost(ev.InputTokens, ev.OutputTokens)))
		}
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		fmt.Printf("Success:   %v\n", ev.Success)
		if ev.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", ev.ErrorMessage)
		}

		fmt.Println()
		fmt.Println(sep)
		fmt.Println("REQUEST")
		fmt.Println(sep)
		if ev.RequestBody != "" {
			fmt.Println(ev.RequestBody)
		} else {
			fmt.Println("(not captured)")
		}

		fmt.Println(sep)
		fmt.Println("RESPONSE")
		fmt.Println(sep)
		if ev.ResponseBody != "" {
			fmt.Println(ev.ResponseBody)
		} else {
			fmt.Println("(not captured)")
		}

		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show LLM token usage and estimated cost per purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newStoreEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		latency, err := e.store.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		rows, err := e.store.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		avgMs := make(map[string]float64, len(latency))
		for _, u := range latency {
			avgMs[u.Purpose] = u.AvgLatencyMs
		}

		rule := strings.Repeat("\u2500", 84)
		fmt.Printf("%-28s  %6s  %10s  %10s  %8s  %10s\n",
			"Purpose", "Calls", "Input", "Output", "Avg Ms", "Cost")
		fmt.Println(rule)

		var (
			total    llm.PurposeSpend
			unpriced []string
		)
		for _, sp := range llm.Spend(rows) {
			cost := formatCost(sp.CostUSD)
			if len(sp.Unpriced) > 0 {
				cost += "*"
				unpriced = append(unpriced, sp.Unpriced...)
			}
			fmt.Printf("%-28s  %6d  %10d  %10d  %8.0f  %10s\n",
				truncate(sp.Purpose.Label(), 28), sp.Calls, sp.InputTokens, sp.OutputTokens,
				avgMs[string(sp.Purpose)], cost)
			total.Calls += sp.Calls
			total.InputTokens += sp.InputTokens
			total.OutputTokens += sp.OutputTokens
			total.CostUSD += sp.CostUSD
		}
		fmt.Println(rule)
		fmt.Printf("%-28s  %6d  %10d  %10d  %8s  %10s\n",
			"TOTAL", total.Calls, total.InputTokens, total.OutputTokens, "", formatCost(total.CostUSD))

		fmt.Println()
		fmt.Println("By model")
		fmt.Println(rule)
		for _, r := range rows {
			fmt.Printf("%-11s  %-32s  %6d  %10d  %10d\n",
				truncate(r.Purpose, 11), truncate(r.Model, 32), r.Calls, r.InputTokens, r.OutputTokens)
		}

		if len(unpriced) > 0 {
			slices.Sort(unpriced)
			fmt.Printf("\n* no pricing for: %s\n", strings.Join(slices.Compact(unpriced), ", "))
		}
		return nil
	},
}

func knownPurpose(p llm.Purpose) bool {
	return p == llm.PurposeUnknown || slices.Contains(llm.Purposes(), p)
}

func purposeNames() string {
	var names []string
	for _, p := range llm.Purposes() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose: "+purposeNames())

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
