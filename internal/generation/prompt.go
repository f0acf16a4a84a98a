package generation

import "github.com/repetix/repetix-api/internal/domain"

// SystemPrompt instructs the model how to turn source text into flashcards.
const SystemPrompt = `You are an expert at creating flashcards. Create flashcards from the provided text.
Each flashcard should have a front_text (question/prompt) and back_text (answer/explanation).
Follow these rules:
1. Front text must be ≤200 characters and be a clear, focused question or prompt
2. Back text must be ≤500 characters and provide a complete, accurate answer
3. Each flashcard should cover a single, important concept
4. Use clear, concise language
5. Ensure accuracy and factual correctness
6. Format response as JSON with array of flashcard objects`

// SchemaName is the name the flashcard JSON schema is registered under.
const SchemaName = "flashcard_generation"

// Sampling parameters used for flashcard generation.
const (
	Temperature      = 0.4
	TopP             = 0.8
	FrequencyPenalty = 0.5
	PresencePenalty  = 0.5
)

// Response is the JSON document a model returns for SchemaName.
type Response struct {
	Candidates []domain.Candidate `json:"candidates"`
}

// FlashcardSchema returns the JSON schema describing Response. A new map is
// returned on every call so callers may modify it.
func FlashcardSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front_text": map[string]any{
							"type":        "string",
							"description": "Question or prompt for the flashcard (max 200 chars)",
						},
						"back_text": map[string]any{
							"type":        "string",
							"description": "Answer or explanation for the flashcard (max 500 chars)",
						},
					},
					"required": []string{"front_text", "back_text"},
				},
			},
		},
		"required": []string{"candidates"},
	}
}
