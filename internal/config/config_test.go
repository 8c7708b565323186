package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatterling/engine/internal/engine"
	"github.com/chatterling/engine/internal/struggle"
)

func TestDefaultConfigMirrorsBuiltins(t *testing.T) {
	cfg := DefaultConfig()

	// AdaptMinOutcomes and MaxExcludeTexts are not file-tunable; the
	// tunable fields must match the built-in defaults.
	got, want := cfg.EngineOptions(), engine.DefaultOptions()
	assert.Equal(t, want.ReviewChunks, got.ReviewChunks)
	assert.Equal(t, want.NewChunks, got.NewChunks)
	assert.Equal(t, want.ContextChunks, got.ContextChunks)
	assert.Equal(t, want.GeneratorBudget, got.GeneratorBudget)
	assert.Equal(t, want.SlowLatencyMs, got.SlowLatencyMs)
	assert.Equal(t, want.FastLatencyMs, got.FastLatencyMs)

	assert.Equal(t, struggle.DefaultWeights(), cfg.StruggleWeights())
}

func TestBandTableNilWhenAbsent(t *testing.T) {
	cfg := Config{}
	assert.Nil(t, cfg.BandTable(), "empty bands section should fall back to the default table")
}

func TestBandTableConversion(t *testing.T) {
	cfg := Config{Bands: []BandStep{{MinAcquired: 0, Band: 1}, {MinAcquired: 50, Band: 2}}}
	table := cfg.BandTable()
	require.Len(t, table, 2)
	assert.Equal(t, 1.0, table.Band(49))
	assert.Equal(t, 2.0, table.Band(50))
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[session]
review_chunks = 8
generator_budget_seconds = 1.5

[struggle]
wrong_cap = 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("CHATTERLING_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.EngineOptions()
	assert.Equal(t, 8, opts.ReviewChunks)
	assert.Equal(t, 1500*time.Millisecond, opts.GeneratorBudget)
	assert.Equal(t, 0.4, cfg.StruggleWeights().WrongCap)

	// Untouched keys keep their defaults.
	assert.Equal(t, engine.DefaultOptions().NewChunks, opts.NewChunks)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))
	t.Setenv("CHATTERLING_CONFIG", path)

	_, err := Load()
	assert.Error(t, err, "unparseable file should fail loudly, not fall back silently")
}
