package core

import "context"

// API defines the contract of the remote notes backend.
// Adhering to this interface keeps the Service independent of the transport
// (HTTP, an in-memory fake, a recorded fixture).
type API interface {
	// List returns the full note list as currently held by the backend.
	List(ctx context.Context) (NoteList, error)

	// Add asks the backend to persist a note with the given text.
	Add(ctx context.Context, text string) error

	// Delete removes the note with the given backend ID.
	Delete(ctx context.Context, id int64) error
}

// HealthChecker is implemented by backends that expose a health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) (Health, error)
}
