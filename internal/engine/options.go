package engine

import "time"

// Options tunes the orchestrator. Zero values fall back to defaults.
type Options struct {
	// ReviewChunks, NewChunks, and ContextChunks set the session mix.
	ReviewChunks  int
	NewChunks     int
	ContextChunks int

	// GeneratorBudget bounds how long PrepareSession waits for generated
	// content before falling back to repository chunks alone.
	GeneratorBudget time.Duration

	// SlowLatencyMs and FastLatencyMs classify response times into
	// struggle signals.
	SlowLatencyMs int
	FastLatencyMs int

	// AdaptMinOutcomes is how many outcomes the rolling window needs
	// before in-session adaptation starts moving the target level.
	AdaptMinOutcomes int

	// MaxExcludeTexts caps the already-seen list sent to the generator.
	MaxExcludeTexts int
}

// DefaultOptions returns the standard session tuning.
func DefaultOptions() Options {
	return Options{
		ReviewChunks:     5,
		NewChunks:        3,
		ContextChunks:    3,
		GeneratorBudget:  3 * time.Second,
		SlowLatencyMs:    15000,
		FastLatencyMs:    3000,
		AdaptMinOutcomes: 4,
		MaxExcludeTexts:  30,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ReviewChunks <= 0 {
		o.ReviewChunks = def.ReviewChunks
	}
	if o.NewChunks <= 0 {
		o.NewChunks = def.NewChunks
	}
	if o.ContextChunks <= 0 {
		o.ContextChunks = def.ContextChunks
	}
	if o.GeneratorBudget <= 0 {
		o.GeneratorBudget = def.GeneratorBudget
	}
	if o.SlowLatencyMs <= 0 {
		o.SlowLatencyMs = def.SlowLatencyMs
	}
	if o.FastLatencyMs <= 0 {
		o.FastLatencyMs = def.FastLatencyMs
	}
	if o.AdaptMinOutcomes <= 0 {
		o.AdaptMinOutcomes = def.AdaptMinOutcomes
	}
	if o.MaxExcludeTexts <= 0 {
		o.MaxExcludeTexts = def.MaxExcludeTexts
	}
	return o
}
