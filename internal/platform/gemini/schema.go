package gemini

import "google.golang.org/genai"

// responseSchema mirrors generation.FlashcardSchema in genai's schema type.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidates": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"front_text": {
							Type:        genai.TypeString,
							Description: "Question or prompt for the flashcard (max 200 chars)",
						},
						"back_text": {
							Type:        genai.TypeString,
							Description: "Answer or explanation for the flashcard (max 500 chars)",
						},
					},
					Required: []string{"front_text", "back_text"},
				},
			},
		},
		Required: []string{"candidates"},
	}
}
