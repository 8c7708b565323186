package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatterling/engine/internal/chunkgen"
	"github.com/chatterling/engine/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect and test the LLM provider",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that an LLM provider is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err == nil {
			fmt.Printf("Provider %q configured via CHATTERLING_ env vars.\n", cfg.Provider)
			return nil
		}

		if discovered, ok := llm.DiscoverConfig(); ok {
			fmt.Printf("Provider %q discovered from standard API key env vars.\n", discovered.Provider)
			return nil
		}

		fmt.Println("No LLM provider configured. Content generation will use the seed set.")
		fmt.Println("Set CHATTERLING_LLM_PROVIDER plus the matching API key, or export")
		fmt.Println("GEMINI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY.")
		return nil
	},
}

var llmGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a test batch of chunks with the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		count, _ := cmd.Flags().GetInt("count")

		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			discovered, ok := llm.DiscoverConfig()
			if !ok {
				return fmt.Errorf("no LLM provider configured: %w", err)
			}
			cfg = discovered
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		provider, err := llm.NewProvider(ctx, cfg, nil)
		if err != nil {
			return err
		}

		gen := chunkgen.New(provider, chunkgen.DefaultConfig())
		start := time.Now()
		chunks, err := gen.Generate(ctx, chunkgen.Spec{
			Language:   language,
			Topic:      topic,
			Difficulty: difficulty,
			Count:      count,
		})
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		fmt.Printf("Generated %d chunk(s) in %s:\n\n", len(chunks), time.Since(start).Round(time.Millisecond))
		for _, c := range chunks {
			out, _ := json.MarshalIndent(c, "", "  ")
			fmt.Println(string(out))
		}
		return nil
	},
}

func init() {
	llmGenCmd.Flags().StringP("language", "l", "fr", "Target language code")
	llmGenCmd.Flags().StringP("topic", "t", "", "Topic to bias content toward")
	llmGenCmd.Flags().IntP("difficulty", "d", 2, "Target difficulty (1-5)")
	llmGenCmd.Flags().IntP("count", "n", 3, "Number of chunks")

	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmGenCmd)
}
