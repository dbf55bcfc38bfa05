// Package conversation implements the per-user rating dialogue: session
// state, its Redis-backed store, and the state machine that decides the
// next prompt for every inbound message.
package conversation

import "github.com/google/uuid"

// State names the phase a session is in.
type State string

const (
	// StateAwaitingCode waits for a barcode, typed or photographed.
	StateAwaitingCode State = "awaiting_code"
	// StateAwaitingQuality waits for a 1-5 rating.
	StateAwaitingQuality State = "awaiting_quality"
	// StateAwaitingReview waits for the free-text review.
	StateAwaitingReview State = "awaiting_review"
	// StateConfirmUpdate waits for a yes/no on replacing a prior review.
	StateConfirmUpdate State = "confirm_update"
)

// Session is one variant per conversational state. Each variant carries
// only the fields valid in that state, so combinations like "pending
// rating without a barcode" cannot be represented.
type Session interface {
	State() State
}

// AwaitingCode is the initial (and post-submission) state. It carries
// nothing: a new barcode starts from scratch.
type AwaitingCode struct{}

func (AwaitingCode) State() State { return StateAwaitingCode }

// AwaitingQuality holds a resolved barcode and waits for the rating.
// NamePending marks the manual-entry branch: the product has no known
// name yet and the next free-text message supplies it.
type AwaitingQuality struct {
	Barcode          string     `json:"barcode"`
	ProductName      string     `json:"productName"`
	NamePending      bool       `json:"namePending,omitempty"`
	ExistingReviewID *uuid.UUID `json:"existingReviewId,omitempty"`
}

func (AwaitingQuality) State() State { return StateAwaitingQuality }

// AwaitingReview holds the accepted rating and waits for the review text.
type AwaitingReview struct {
	Barcode          string     `json:"barcode"`
	ProductName      string     `json:"productName"`
	Quality          int        `json:"quality"`
	ExistingReviewID *uuid.UUID `json:"existingReviewId,omitempty"`
}

func (AwaitingReview) State() State { return StateAwaitingReview }

// ConfirmUpdate is reached when the user already reviewed the current
// product; the referenced review is overwritten if they confirm.
type ConfirmUpdate struct {
	Barcode          string    `json:"barcode"`
	ProductName      string    `json:"productName"`
	ExistingReviewID uuid.UUID `json:"existingReviewId"`
}

func (ConfirmUpdate) State() State { return StateConfirmUpdate }
