// Package events provides the in-process event bus modules use to react
// to each other's domain events without importing one another.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName uniquely identifies the event type, e.g. "catalog.review.submitted".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp every event shares. Embed it and call
// NewBaseEvent at publish time.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a new event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes the events it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to their subscribers. Publishing is
// fire-and-forget: the publisher never learns whether a handler ran, and
// delivery order across handlers is not guaranteed.
type Bus interface {
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for the event name returned by
	// Event.EventName. Registration is expected to happen at startup.
	Subscribe(eventName string, handler Handler)
}
