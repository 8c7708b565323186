package chunkgen

import (
	"context"

	"github.com/chatterling/engine/internal/content"
)

// StaticGenerator serves chunks from a fixed seed table. It backs the
// mock LLM provider mode and offline tests, and guarantees the engine
// always has some content to fall back on.
type StaticGenerator struct {
	seeds []content.Chunk
}

// NewStatic creates a StaticGenerator. With no seeds it uses the
// built-in starter set.
func NewStatic(seeds ...content.Chunk) *StaticGenerator {
	if len(seeds) == 0 {
		seeds = starterChunks
	}
	return &StaticGenerator{seeds: seeds}
}

// Generate filters the seed table by language and difficulty, skipping
// excluded texts. Never returns an error other than ctx cancellation.
func (g *StaticGenerator) Generate(ctx context.Context, spec Spec) ([]content.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(spec.Exclude))
	for _, t := range spec.Exclude {
		excluded[content.NormalizeText(t)] = true
	}

	var out []content.Chunk
	for _, c := range g.seeds {
		if spec.Language != "" && c.Language != spec.Language {
			continue
		}
		if spec.Difficulty > 0 && c.Difficulty != spec.Difficulty {
			continue
		}
		if spec.Topic != "" && !c.HasTopic(spec.Topic) {
			continue
		}
		if excluded[content.NormalizeText(c.Text)] {
			continue
		}
		out = append(out, c)
		if spec.Count > 0 && len(out) == spec.Count {
			break
		}
	}

	// Relax the topic filter if it left us short.
	if spec.Topic != "" && (spec.Count == 0 || len(out) < spec.Count) {
		for _, c := range g.seeds {
			if spec.Language != "" && c.Language != spec.Language {
				continue
			}
			if spec.Difficulty > 0 && c.Difficulty != spec.Difficulty {
				continue
			}
			if c.HasTopic(spec.Topic) {
				continue // already considered above
			}
			if excluded[content.NormalizeText(c.Text)] {
				continue
			}
			out = append(out, c)
			if spec.Count > 0 && len(out) == spec.Count {
				break
			}
		}
	}

	return out, nil
}

// starterChunks is a minimal French starter set used when no seeds are
// supplied. Real deployments seed the repository from curated lists.
var starterChunks = []content.Chunk{
	{Text: "bonjour", Translation: "hello", Language: "fr", Kind: content.KindFixedPhrase, Difficulty: 1, Topics: []string{"greetings"}},
	{Text: "merci beaucoup", Translation: "thank you very much", Language: "fr", Kind: content.KindFixedPhrase, Difficulty: 1, Topics: []string{"greetings"}},
	{Text: "j'ai faim", Translation: "I'm hungry", Language: "fr", Kind: content.KindUtterance, Difficulty: 1, Topics: []string{"food", "feelings"}},
	{Text: "un chat noir", Translation: "a black cat", Language: "fr", Kind: content.KindWordPairing, Difficulty: 1, Topics: []string{"animals"}},
	{Text: "il pleut", Translation: "it's raining", Language: "fr", Kind: content.KindUtterance, Difficulty: 1, Topics: []string{"weather"}},
	{Text: "comment tu t'appelles ?", Translation: "what's your name?", Language: "fr", Kind: content.KindUtterance, Difficulty: 2, Topics: []string{"greetings"}},
	{Text: "j'aime les animaux", Translation: "I like animals", Language: "fr", Kind: content.KindUtterance, Difficulty: 2, Topics: []string{"animals"}},
	{
		Text: "je voudrais ___, s'il vous plaît", Translation: "I would like ___, please",
		Language: "fr", Kind: content.KindPattern, Difficulty: 2, Topics: []string{"food"},
		Slots: []content.Slot{{Placeholder: "a food or drink", Options: []string{"une pomme", "du pain", "de l'eau"}}},
	},
	{
		Text: "mon ___ préféré est le ___", Translation: "my favorite ___ is ___",
		Language: "fr", Kind: content.KindPattern, Difficulty: 3, Topics: []string{"play", "animals"},
		Slots: []content.Slot{
			{Placeholder: "a category", Options: []string{"animal", "jeu", "sport"}},
			{Placeholder: "a thing in that category", Options: []string{"chien", "football", "chat"}},
		},
	},
	{Text: "qu'est-ce que tu as fait aujourd'hui ?", Translation: "what did you do today?", Language: "fr", Kind: content.KindUtterance, Difficulty: 3, Topics: []string{"school"}},
	{Text: "faire ses devoirs", Translation: "to do one's homework", Language: "fr", Kind: content.KindWordPairing, Difficulty: 3, Topics: []string{"school"}},
	{Text: "si j'étais un animal, je serais un dauphin", Translation: "if I were an animal, I would be a dolphin", Language: "fr", Kind: content.KindUtterance, Difficulty: 4, Topics: []string{"animals", "play"}},
	{Text: "avoir le cafard", Translation: "to feel down", Language: "fr", Kind: content.KindFixedPhrase, Difficulty: 4, Topics: []string{"feelings"}},
	{Text: "bien que la pluie tombe, nous allons jouer dehors", Translation: "even though it's raining, we're going to play outside", Language: "fr", Kind: content.KindUtterance, Difficulty: 5, Topics: []string{"weather", "play"}},
}
