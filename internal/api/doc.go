// Package api implements the HTTP handlers of the Repetix API: account and
// session endpoints, flashcard CRUD and AI flashcard generation.
//
// Handlers decode and validate requests, call the service layer, and map
// service errors to status codes through MapErrorToStatusCode. Error bodies
// never contain raw error text; they carry a safe message, the request's
// trace ID and, for validation failures, per-field details.
package api
