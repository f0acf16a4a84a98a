// Package gemini implements generation.Generator with Google's Gemini API
// through the google.golang.org/genai SDK.
//
// The generator asks for a JSON response constrained by a response schema
// equivalent to the flashcard_generation schema used with OpenRouter, so
// both providers return the same document.
package gemini
