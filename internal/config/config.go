package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chatterling/engine/internal/calibrate"
	"github.com/chatterling/engine/internal/engine"
	"github.com/chatterling/engine/internal/struggle"
)

// Config holds the engine tuning knobs. Everything here has a calibrated
// default; the config file only exists for overrides.
type Config struct {
	Session  SessionConfig  `toml:"session"`
	Bands    []BandStep     `toml:"bands"`
	Struggle StruggleConfig `toml:"struggle"`
}

// SessionConfig tunes the session mix and timing thresholds.
type SessionConfig struct {
	ReviewChunks           int     `toml:"review_chunks"`
	NewChunks              int     `toml:"new_chunks"`
	ContextChunks          int     `toml:"context_chunks"`
	GeneratorBudgetSeconds float64 `toml:"generator_budget_seconds"`
	SlowLatencyMs          int     `toml:"slow_latency_ms"`
	FastLatencyMs          int     `toml:"fast_latency_ms"`
}

// BandStep is one row of the acquired-count to band table.
type BandStep struct {
	MinAcquired int     `toml:"min_acquired"`
	Band        float64 `toml:"band"`
}

// StruggleConfig tunes the affective-filter risk terms.
type StruggleConfig struct {
	WrongPerSignal float64 `toml:"wrong_per_signal"`
	WrongCap       float64 `toml:"wrong_cap"`
	HelpCap        float64 `toml:"help_cap"`
	ConfidenceCap  float64 `toml:"confidence_cap"`
	GapCap         float64 `toml:"gap_cap"`
	GapGraceDays   float64 `toml:"gap_grace_days"`
	GapFullDays    float64 `toml:"gap_full_days"`
}

// DefaultConfig returns config matching the built-in defaults.
func DefaultConfig() Config {
	opts := engine.DefaultOptions()
	weights := struggle.DefaultWeights()

	bands := make([]BandStep, len(calibrate.DefaultBandTable))
	for i, step := range calibrate.DefaultBandTable {
		bands[i] = BandStep{MinAcquired: step.MinAcquired, Band: step.Band}
	}

	return Config{
		Session: SessionConfig{
			ReviewChunks:           opts.ReviewChunks,
			NewChunks:              opts.NewChunks,
			ContextChunks:          opts.ContextChunks,
			GeneratorBudgetSeconds: opts.GeneratorBudget.Seconds(),
			SlowLatencyMs:          opts.SlowLatencyMs,
			FastLatencyMs:          opts.FastLatencyMs,
		},
		Bands: bands,
		Struggle: StruggleConfig{
			WrongPerSignal: weights.WrongPerSignal,
			WrongCap:       weights.WrongCap,
			HelpCap:        weights.HelpCap,
			ConfidenceCap:  weights.ConfidenceCap,
			GapCap:         weights.GapCap,
			GapGraceDays:   weights.GapGraceDays,
			GapFullDays:    weights.GapFullDays,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if p := os.Getenv("CHATTERLING_CONFIG"); p != "" {
		paths = append(paths, p)
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "chatterling", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "chatterling", "config.toml"))
	}

	return paths
}

// EngineOptions converts the session section into engine options.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		ReviewChunks:    c.Session.ReviewChunks,
		NewChunks:       c.Session.NewChunks,
		ContextChunks:   c.Session.ContextChunks,
		GeneratorBudget: time.Duration(c.Session.GeneratorBudgetSeconds * float64(time.Second)),
		SlowLatencyMs:   c.Session.SlowLatencyMs,
		FastLatencyMs:   c.Session.FastLatencyMs,
	}
}

// BandTable converts the bands section into a calibrator table. Returns
// nil (meaning the default) when the section is absent.
func (c Config) BandTable() calibrate.BandTable {
	if len(c.Bands) == 0 {
		return nil
	}
	table := make(calibrate.BandTable, len(c.Bands))
	for i, step := range c.Bands {
		table[i] = calibrate.BandStep{MinAcquired: step.MinAcquired, Band: step.Band}
	}
	return table
}

// StruggleWeights converts the struggle section into monitor weights.
func (c Config) StruggleWeights() struggle.Weights {
	return struggle.Weights{
		WrongPerSignal: c.Struggle.WrongPerSignal,
		WrongCap:       c.Struggle.WrongCap,
		HelpCap:        c.Struggle.HelpCap,
		ConfidenceCap:  c.Struggle.ConfidenceCap,
		GapCap:         c.Struggle.GapCap,
		GapGraceDays:   c.Struggle.GapGraceDays,
		GapFullDays:    c.Struggle.GapFullDays,
	}
}
