package chunkgen

import (
	"context"

	"github.com/chatterling/engine/internal/content"
)

// Spec describes what content to generate for a learner.
type Spec struct {
	// Language is the target language code, e.g. "fr", "es".
	Language string

	// Topic biases generation toward a subject the learner cares about.
	// Empty means no topic preference.
	Topic string

	// Difficulty is the target difficulty (1-5).
	Difficulty int

	// AgeBand labels the learner's age group, e.g. "6-8", "9-11".
	AgeBand string

	// Interests are topics detected from the learner's conversation,
	// strongest first. Used to flavor examples.
	Interests []string

	// Exclude contains chunk texts the learner has already seen.
	// Generated chunks must not repeat any of them.
	Exclude []string

	// Count is the number of chunks to generate.
	Count int
}

// Generator produces teaching chunks for a spec.
// Implementations must respect ctx cancellation; callers bound
// generation with a deadline and fall back to repository content.
type Generator interface {
	// Generate produces up to spec.Count validated chunks.
	// Chunks that fail validation are dropped, not returned as errors,
	// so the result may be shorter than requested.
	Generate(ctx context.Context, spec Spec) ([]content.Chunk, error)
}
