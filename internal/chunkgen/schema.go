package chunkgen

import "github.com/chatterling/engine/internal/llm"

// ChunkBatchSchema defines the JSON schema for LLM chunk generation responses.
var ChunkBatchSchema = &llm.Schema{
	Name:        "chunk-batch",
	Description: "A batch of language teaching chunks with translations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"chunks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The chunk in the target language. Blanks marked with ___ for pattern kind.",
						},
						"translation": map[string]any{
							"type":        "string",
							"description": "English translation of the chunk",
						},
						"kind": map[string]any{
							"type":        "string",
							"enum":        []any{"fixed_phrase", "word_pairing", "utterance", "pattern"},
							"description": "How the chunk is taught",
						},
						"slots": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"placeholder": map[string]any{
										"type":        "string",
										"description": "What goes in the blank, e.g. 'a food'",
									},
									"options": map[string]any{
										"type": "array",
										"items": map[string]any{
											"type": "string",
										},
										"description": "Example fillers for the blank",
									},
								},
								"required":             []any{"placeholder", "options"},
								"additionalProperties": false,
							},
							"description": "One entry per blank. Empty array for non-pattern kinds.",
						},
						"difficulty": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "Difficulty from 1 (easiest) to 5 (hardest)",
						},
						"topics": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "One or two everyday-life topic tags",
						},
					},
					"required":             []any{"text", "translation", "kind", "slots", "difficulty", "topics"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"chunks"},
		"additionalProperties": false,
	},
}
