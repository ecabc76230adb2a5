// Package core holds the domain of the notes client: the note model, the
// port to the remote notes API and the Service that sequences its calls.
package core

import (
	"fmt"
	"time"
)

// EventType represents the kind of change observed by the Service.
type EventType string

const (
	EventRefresh EventType = "REFRESH"
	EventAdd     EventType = "ADD"
	EventDelete  EventType = "DELETE"
)

// Event is published to watchers after every successful operation that
// touches the note list.
type Event struct {
	Type      EventType
	NoteCount int
	Notes     NoteList
	Timestamp int64 // Unix timestamp
}

// String renders the event for logs and lifecycle consumers.
func (e Event) String() string {
	return fmt.Sprintf("%s notes=%d at=%s", e.Type, e.NoteCount, time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}
