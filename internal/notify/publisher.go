// internal/notify/publisher.go
package notify

import (
	"context"
)

// Publisher delivers events to live observers. Implementations must not
// block on slow observers; callers treat errors as advisory.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LocalPublisher broadcasts straight into this process's hub
type LocalPublisher struct {
	hub *Hub
}

// NewLocalPublisher creates a publisher for single-instance deployments
func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

// Publish implements Publisher
func (p *LocalPublisher) Publish(_ context.Context, e Event) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	if !p.hub.Broadcast(data) {
		return ErrHubBusy
	}
	return nil
}

// RecordingPublisher keeps every published event, for tests and debugging
type RecordingPublisher struct {
	events chan Event
}

// NewRecordingPublisher creates a recorder holding up to size events
func NewRecordingPublisher(size int) *RecordingPublisher {
	return &RecordingPublisher{events: make(chan Event, size)}
}

// Publish implements Publisher
func (p *RecordingPublisher) Publish(_ context.Context, e Event) error {
	select {
	case p.events <- e:
	default:
	}
	return nil
}

// Events drains what has been recorded so far
func (p *RecordingPublisher) Events() []Event {
	var out []Event
	for {
		select {
		case e := <-p.events:
			out = append(out, e)
		default:
			return out
		}
	}
}
