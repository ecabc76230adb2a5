package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Note is the central entity of the domain.
// Text is the only field the client ever sets; ID and CreatedAt are owned by
// the backend and only decoded when it sends them.
type Note struct {
	ID        int64      `json:"id,omitempty"`
	Text      string     `json:"note"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// UnmarshalJSON decodes a note leniently: an id that is not an integer (or a
// numeric string) is left as zero instead of failing the whole list.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var wire struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Note(wire.plain)
	n.ID = parseID(wire.ID)
	return nil
}

func parseID(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// NoteList is the ordered sequence of notes as returned by the backend.
// No ordering, dedup or size invariants are imposed on it.
type NoteList []Note

// Texts returns the text of every note, preserving order.
func (l NoteList) Texts() []string {
	texts := make([]string, len(l))
	for i := range l {
		texts[i] = l[i].Text
	}
	return texts
}

// Health is the payload of the backend health endpoint.
type Health struct {
	Status string `json:"status"`
}

// Timestamp accepts the layouts the backend is known to emit.
// Values in any other shape keep Time zero and are preserved in Raw.
type Timestamp struct {
	time.Time
	Raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	time.DateOnly,
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = string(data)
	}
	t.Raw = raw

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() && t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
