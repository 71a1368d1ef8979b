package wordpairs

import "github.com/abhisek/neurogym/internal/llm"

// PairsSchema is the JSON schema for generated word pairs.
var PairsSchema = &llm.Schema{
	Name:        "word-pairs",
	Description: "Cue/target word pairs for a paired-associates memory exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pairs": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"cue": map[string]any{
							"type":        "string",
							"description": "The word shown at recall time, a single lowercase English word",
						},
						"target": map[string]any{
							"type":        "string",
							"description": "The word the player must recall, a single lowercase English word unrelated to the cue",
						},
					},
					"required":             []any{"cue", "target"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"pairs"},
		"additionalProperties": false,
	},
}

type pairsOutput struct {
	Pairs []Pair `json:"pairs"`
}
