package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chatterling/engine/internal/calibrate"
	"github.com/chatterling/engine/internal/chunkgen"
	"github.com/chatterling/engine/internal/config"
	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/engine"
	"github.com/chatterling/engine/internal/llm"
	"github.com/chatterling/engine/internal/profile"
	"github.com/chatterling/engine/internal/srs"
	"github.com/chatterling/engine/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "chatterling",
	Short: "Adaptive language-learning engine for kids",
	Long:  "Chatterling — the pedagogy engine behind a chat-based language app for children: spaced repetition, difficulty calibration, and struggle detection.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CHATTERLING_DB env var)")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then CHATTERLING_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store for a command.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// buildEngine wires the full engine on top of an open store. A missing
// LLM configuration is not an error; content generation just stays off.
func buildEngine(ctx context.Context, s *store.Store) (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	repo := content.NewRepository(s.Chunks())
	scheduler := srs.NewScheduler(s.States())
	profiles := profile.NewService(s.Profiles())
	calibrator := calibrate.New(repo, scheduler, cfg.BandTable())

	generator := buildGenerator(ctx, s)

	eng := engine.New(repo, scheduler, profiles, calibrator, generator, s.Events(), cfg.EngineOptions())
	eng.WithWeights(cfg.StruggleWeights())
	return eng, nil
}

// buildGenerator creates the chunk generator from the LLM environment.
// Falls back to the static seed generator when no provider is configured.
func buildGenerator(ctx context.Context, s *store.Store) chunkgen.Generator {
	llmCfg := llm.ConfigFromEnv()
	if llmCfg.Validate() != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return chunkgen.NewStatic()
		}
		llmCfg = discovered
	}

	provider, err := llm.NewProvider(ctx, llmCfg, s.Events())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM provider unavailable, using seed content: %v\n", err)
		return chunkgen.NewStatic()
	}
	return chunkgen.New(provider, chunkgen.DefaultConfig())
}
