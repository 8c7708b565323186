package content

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Bonjour", "bonjour"},
		{"strips punctuation", "Hello, world!", "hello world"},
		{"collapses whitespace", "  il   y a\t", "il y a"},
		{"keeps apostrophes", "J'ai faim", "j'ai faim"},
		{"normalizes curly apostrophe", "j’ai faim", "j'ai faim"},
		{"strips question mark", "Comment tu t'appelles ?", "comment tu t'appelles"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkValidate(t *testing.T) {
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr bool
	}{
		{"valid utterance", Chunk{Text: "il pleut", Language: "fr", Kind: KindUtterance}, false},
		{"pattern with slot", Chunk{Text: "je voudrais ___", Language: "fr", Kind: KindPattern, Slots: []Slot{{Placeholder: "a food"}}}, false},
		{"pattern without slots", Chunk{Text: "je voudrais ___", Language: "fr", Kind: KindPattern}, true},
		{"utterance with slots", Chunk{Text: "il pleut", Language: "fr", Kind: KindUtterance, Slots: []Slot{{Placeholder: "x"}}}, true},
		{"empty text", Chunk{Language: "fr", Kind: KindUtterance}, true},
		{"missing language", Chunk{Text: "il pleut", Kind: KindUtterance}, true},
		{"unknown kind", Chunk{Text: "il pleut", Language: "fr", Kind: "idiom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClampDifficulty(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {-3, 1}, {1, 1}, {3, 3}, {5, 5}, {9, 5},
	}
	for _, tt := range tests {
		if got := ClampDifficulty(tt.in); got != tt.want {
			t.Errorf("ClampDifficulty(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
