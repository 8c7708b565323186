package chunkgen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chatterling/engine/internal/content"
	"github.com/chatterling/engine/internal/llm"
)

const chunkBatchJSON = `{
	"chunks": [
		{"text": "bonjour", "translation": "hello", "kind": "fixed_phrase", "slots": [], "difficulty": 1, "topics": ["greetings"]},
		{"text": "", "translation": "broken", "kind": "utterance", "slots": [], "difficulty": 1, "topics": []},
		{"text": "je veux ___", "translation": "I want ___", "kind": "pattern",
		 "slots": [{"placeholder": "a thing", "options": ["une pomme", "un livre"]}],
		 "difficulty": 9, "topics": ["food"]},
		{"text": "il pleut", "translation": "it's raining", "kind": "utterance", "slots": [], "difficulty": 1, "topics": ["weather"]}
	]
}`

func TestLLMGeneratorParsesAndValidates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(chunkBatchJSON)})
	g := New(mock, DefaultConfig())

	chunks, err := g.Generate(context.Background(), Spec{
		Language:   "fr",
		Difficulty: 2,
		AgeBand:    "6-8",
		Count:      10,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The empty-text chunk is dropped; the other three survive.
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Text != "bonjour" || chunks[0].Kind != content.KindFixedPhrase {
		t.Errorf("first chunk = %+v", chunks[0])
	}
	if chunks[0].Language != "fr" {
		t.Errorf("Language = %q, want the requested language", chunks[0].Language)
	}
	if len(chunks[0].AgeBands) != 1 || chunks[0].AgeBands[0] != "6-8" {
		t.Errorf("AgeBands = %v, want [6-8]", chunks[0].AgeBands)
	}

	// Out-of-range difficulty is clamped, not dropped.
	if chunks[1].Difficulty != content.MaxDifficulty {
		t.Errorf("Difficulty = %d, want clamped to %d", chunks[1].Difficulty, content.MaxDifficulty)
	}
	if len(chunks[1].Slots) != 1 || chunks[1].Slots[0].Placeholder != "a thing" {
		t.Errorf("Slots = %+v", chunks[1].Slots)
	}
}

func TestLLMGeneratorStopsAtCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(chunkBatchJSON)})
	g := New(mock, DefaultConfig())

	chunks, err := g.Generate(context.Background(), Spec{Language: "fr", Difficulty: 1, Count: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
}

func TestLLMGeneratorSendsSchemaRequest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"chunks": []}`)})
	g := New(mock, DefaultConfig())

	if _, err := g.Generate(context.Background(), Spec{Language: "fr", Difficulty: 1, Count: 1}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != ChunkBatchSchema {
		t.Error("request should carry the chunk batch schema")
	}
	if req.System != systemPrompt {
		t.Error("request should carry the system prompt")
	}
}

func TestLLMGeneratorPropagatesProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	g := New(mock, DefaultConfig())

	if _, err := g.Generate(context.Background(), Spec{Language: "fr", Count: 1}); err == nil {
		t.Error("Generate should surface provider errors")
	}
}

func TestLLMGeneratorRejectsMalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	g := New(mock, DefaultConfig())

	if _, err := g.Generate(context.Background(), Spec{Language: "fr", Count: 1}); err == nil {
		t.Error("Generate should fail on unparseable responses")
	}
}
