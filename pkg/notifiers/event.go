package notifiers

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	EventSessionUnauthorized = "session.unauthorized"
)

// Event represents the payload delivered downstream.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	BaseURL    string    `json:"base_url"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event of the given type for source.
func NewEvent(typ, source, baseURL string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Source:     source,
		BaseURL:    baseURL,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes are attached to broker messages so subscribers can filter
// without decoding the body.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 2)
	if e.Type != "" {
		attrs["event_type"] = e.Type
	}
	if e.Source != "" {
		attrs["source"] = e.Source
	}
	return attrs
}
