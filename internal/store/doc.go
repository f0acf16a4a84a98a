// Package store defines the persistence interfaces used by the services:
// users, flashcards, generations, generation error logs, password reset
// tokens and revoked JWTs. Every query that touches user-owned data takes
// the owner's ID so one user can never read or change another user's rows.
//
// Implementations live in internal/platform/postgres.
package store
