// Package openrouter is a client for the OpenRouter chat completions API
// and a generation.Generator built on it.
//
// Requests carry a JSON schema response format and are retried with a
// linear delay on server errors and transport failures. Client errors
// (4xx) are returned at once as *APIError.
package openrouter
