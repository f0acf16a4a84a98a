// Package domain contains the core entities of the application: flashcards,
// AI generations and their candidates, generation error logs and users,
// together with their validation rules. It has no knowledge of storage or
// transport.
package domain
