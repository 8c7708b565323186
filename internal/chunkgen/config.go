package chunkgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxExclude is the maximum number of already-seen chunk texts
	// to include in the prompt for deduplication.
	MaxExclude int

	// MaxInterests is the maximum number of learner interests
	// to include in the prompt.
	MaxInterests int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    1024,
		Temperature:  0.8,
		MaxExclude:   30,
		MaxInterests: 3,
	}
}
