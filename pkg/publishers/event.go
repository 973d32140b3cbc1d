package publishers

import (
	"time"
)

// Event carries one fetched catalog collection downstream.
type Event struct {
	Resource  string    `json:"resource"`
	Path      string    `json:"path"`
	Payload   any       `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewEvent constructs an Event for a fetched resource.
func NewEvent(resource, path string, payload any) Event {
	return Event{
		Resource:  resource,
		Path:      path,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}
}

// attributes are attached to broker messages so consumers can route without decoding the body.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"resource": e.Resource,
		"path":     e.Path,
	}
}
