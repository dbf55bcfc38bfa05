// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"scanrate_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event     = events.Event
	Bus       = events.Bus
	Handler   = events.Handler
	BaseEvent = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Catalog Domain Events
// =============================================================================

// ProductSeeded is published when a product unknown to the store is named
// from the external lookup for the first time.
type ProductSeeded struct {
	BaseEvent
	Barcode string `json:"barcode"`
	Name    string `json:"name"`
}

func (e ProductSeeded) EventName() string { return "catalog.product.seeded" }

// ReviewSubmitted is published after a review write succeeds. Updated is
// true when an existing review was overwritten rather than created.
type ReviewSubmitted struct {
	BaseEvent
	Barcode  string    `json:"barcode"`
	UserID   int64     `json:"userId"`
	ReviewID uuid.UUID `json:"reviewId"`
	Rating   int       `json:"rating"`
	Updated  bool      `json:"updated"`
}

func (e ReviewSubmitted) EventName() string { return "catalog.review.submitted" }
