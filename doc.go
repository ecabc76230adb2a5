// Package notes is the Composition Root of the notes client.
//
// It connects the domain (pkg/core) with the backend adapters (pkg/adapters)
// using the same ports-and-adapters layout throughout: the Service only knows
// the core.API port, and the REST adapter is wired in by default.
//
// Every mutation is followed by a refresh of the full list, issued only once the
// backend has answered the mutation. Overlapping refreshes cancel each other so
// that the newest one wins.
//
// Usage:
//
//	svc, err := notes.New("https://notes.example.com/api",
//		notes.WithTimeout(5*time.Second),
//		notes.WithLogger(logger),
//	)
//
//	// Append a note; the refreshed list comes back.
//	list, err := svc.AddNote(ctx, "buy milk")
//
//	// Failures are typed.
//	if errors.Is(err, core.ErrServer) { ... }
package notes
