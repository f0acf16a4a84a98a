// Package service contains the application use cases of the API: account
// and session management, flashcard management and AI flashcard generation.
//
// Services coordinate the domain types with the store interfaces defined in
// internal/store and the generation.Generator implementations. They apply
// transactional boundaries when an operation spans several stores and
// return sentinel errors (from this package, domain, store, auth and
// generation) that the API layer maps to status codes.
//
// Services receive their dependencies through constructor injection and
// never depend on a concrete infrastructure implementation.
package service
