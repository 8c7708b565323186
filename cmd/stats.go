package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <learner-id>",
	Short: "Show a learner's progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID := args[0]

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		eng, err := buildEngine(ctx, s)
		if err != nil {
			return err
		}

		report, err := eng.Progress(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("progress report: %w", err)
		}

		fmt.Printf("Learner:   %s (%s)\n", report.LearnerID, report.Language)
		fmt.Printf("Level:     %.1f — %s (%.0f/100)\n", report.CurrentLevel, report.CEFRLabel, report.CEFRScore)
		fmt.Printf("Risk:      %.2f\n", report.RiskScore)
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("Acquired:  %d\n", report.ChunkCounts.Acquired)
		fmt.Printf("Learning:  %d\n", report.ChunkCounts.Learning)
		fmt.Printf("Fragile:   %d\n", report.ChunkCounts.Fragile)
		fmt.Printf("Due now:   %d\n", report.DueCount)
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("Sessions:  %d (%d minutes)\n", report.TotalSessions, report.TotalMinutes)
		if len(report.Interests) > 0 {
			fmt.Printf("Interests: %s\n", strings.Join(report.Interests, ", "))
		}

		counts, err := s.Events().CountByKind(ctx, learnerID)
		if err == nil && len(counts) > 0 {
			fmt.Println(strings.Repeat("─", 40))
			for kind, n := range counts {
				fmt.Printf("%-10s %d event(s)\n", kind+":", n)
			}
		}
		return nil
	},
}
