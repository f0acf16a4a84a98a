// Package generation defines the boundary between the application and the
// language models that propose flashcard candidates.
//
// A Generator turns source text into a list of domain.Candidate values.
// Provider implementations live under internal/platform (OpenRouter and
// Gemini); StaticGenerator serves local development and tests. Every
// implementation passes its output through NormalizeCandidates, and reports
// failures with the sentinel errors in this package so callers can classify
// them with ErrorCode.
package generation
