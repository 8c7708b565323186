package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chatterling/engine/internal/calibrate"
	"github.com/chatterling/engine/internal/content"
)

var sessionCmd = &cobra.Command{
	Use:   "session <learner-id>",
	Short: "Prepare a session plan for a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID := args[0]
		language, _ := cmd.Flags().GetString("language")
		topic, _ := cmd.Flags().GetString("topic")

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

		plan, err := eng.PrepareSession(ctx, learnerID, language, topic)
		if err != nil {
			return fmt.Errorf("prepare session: %w", err)
		}

		fmt.Printf("Session %s for %s (%s)\n", plan.SessionID, plan.LearnerID, plan.Language)
		if plan.Topic != "" {
			fmt.Printf("Topic:    %s\n", plan.Topic)
		}
		fmt.Printf("Level:    %.1f (%s), targeting %.1f\n",
			plan.CurrentLevel, calibrate.CEFRLabel(plan.CurrentLevel), plan.TargetLevel)
		fmt.Printf("Due:      %d chunk(s) need review\n\n", plan.DueCount)

		printChunkSection("Review", plan.ReviewChunks)
		printChunkSection("New", plan.NewChunks)
		printChunkSection("Context", plan.ContextChunks)
		return nil
	},
}

func printChunkSection(label string, chunks []content.Chunk) {
	fmt.Printf("%s (%d)\n", label, len(chunks))
	fmt.Println(strings.Repeat("─", 60))
	if len(chunks) == 0 {
		fmt.Println("(none)")
		fmt.Println()
		return
	}
	for _, c := range chunks {
		fmt.Printf("  [%d] %-40s  %s\n", c.Difficulty, c.Text, c.Translation)
	}
	fmt.Println()
}

func init() {
	sessionCmd.Flags().StringP("language", "l", "fr", "Target language code")
	sessionCmd.Flags().StringP("topic", "t", "", "Topic to bias content toward")
}
