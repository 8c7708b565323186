package chunkgen

import (
	"context"
	"testing"

	"github.com/chatterling/engine/internal/content"
)

func TestStaticGeneratorFilters(t *testing.T) {
	g := NewStatic()

	chunks, err := g.Generate(context.Background(), Spec{Language: "fr", Difficulty: 1, Count: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, c := range chunks {
		if c.Language != "fr" || c.Difficulty != 1 {
			t.Errorf("chunk %q is %s/d%d, want fr/d1", c.Text, c.Language, c.Difficulty)
		}
	}
}

func TestStaticGeneratorExcludesSeenTexts(t *testing.T) {
	g := NewStatic(
		content.Chunk{Text: "bonjour", Translation: "hello", Language: "fr", Kind: content.KindFixedPhrase, Difficulty: 1},
		content.Chunk{Text: "merci", Translation: "thanks", Language: "fr", Kind: content.KindFixedPhrase, Difficulty: 1},
	)

	// Exclusion matches on normalized text, so punctuation and case
	// differences still count as seen.
	chunks, err := g.Generate(context.Background(), Spec{
		Language:   "fr",
		Difficulty: 1,
		Exclude:    []string{"Bonjour!"},
		Count:      5,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "merci" {
		t.Errorf("chunks = %+v, want only merci", chunks)
	}
}

func TestStaticGeneratorRelaxesTopicWhenShort(t *testing.T) {
	g := NewStatic(
		content.Chunk{Text: "un chat noir", Translation: "a black cat", Language: "fr", Kind: content.KindWordPairing, Difficulty: 1, Topics: []string{"animals"}},
		content.Chunk{Text: "il pleut", Translation: "it's raining", Language: "fr", Kind: content.KindUtterance, Difficulty: 1, Topics: []string{"weather"}},
	)

	chunks, err := g.Generate(context.Background(), Spec{Language: "fr", Difficulty: 1, Topic: "animals", Count: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 after relaxing the topic filter", len(chunks))
	}
	if chunks[0].Text != "un chat noir" {
		t.Errorf("topic matches should come first, got %q", chunks[0].Text)
	}
}

func TestStaticGeneratorRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStatic().Generate(ctx, Spec{Language: "fr", Count: 1}); err == nil {
		t.Error("Generate with cancelled context should fail")
	}
}
