// Package service implements the catalog use cases: resolving a barcode
// to a product, aggregating its reviews, and writing review submissions.
package service

import (
	"context"
	"errors"

	"scanrate_backend/internal/catalog/repository"
	"scanrate_backend/internal/events"
	"scanrate_backend/internal/openfoodfacts"
	"scanrate_backend/platform/apperr"
	"scanrate_backend/platform/logger"
	"scanrate_backend/platform/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetProduct(ctx context.Context, barcode string) (repository.Product, error)
	UpsertProductName(ctx context.Context, barcode string, name string) error
	ListReviews(ctx context.Context, barcode string) ([]repository.Review, error)
	CreateReview(ctx context.Context, barcode string, userID int64, rating int, text string) (repository.Review, error)
	UpdateReview(ctx context.Context, id uuid.UUID, userID int64, rating int, text string) (repository.Review, error)
}

// Lookup is the external product lookup collaborator.
type Lookup interface {
	Lookup(ctx context.Context, barcode string) openfoodfacts.Result
}

// Outcome classifies how a barcode was resolved.
type Outcome int

const (
	// ResolvedLocal means the product exists in the store.
	ResolvedLocal Outcome = iota
	// ResolvedExternal means the store missed but the lookup named it.
	ResolvedExternal
	// Unresolved means neither the store nor the lookup knows it; the
	// caller must collect a name manually.
	Unresolved
)

// Resolution is the result of resolving a barcode for a given user.
type Resolution struct {
	Outcome Outcome
	// Product and View are set for ResolvedLocal.
	Product repository.Product
	View    AggregateView
	// ProvisionalName is set for ResolvedExternal; it is not persisted
	// until a review submission commits it.
	ProvisionalName string
}

// Submission is one review write request.
type Submission struct {
	Barcode     string `validate:"required"`
	ProductName string `validate:"required"`
	UserID      int64  `validate:"required"`
	Rating      int    `validate:"gte=1,lte=5"`
	Text        string
	// ExistingReviewID, when set, selects the overwrite path.
	ExistingReviewID *uuid.UUID
}

// Service implements barcode resolution and review writing.
type Service struct {
	store       Store
	lookup      Lookup
	bus         events.Bus
	val         *validator.Validator
	log         *logger.Logger
	lookupGroup singleflight.Group
}

// New creates a new catalog service.
func New(store Store, lookup Lookup, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		lookup: lookup,
		bus:    bus,
		val:    val,
		log:    log,
	}
}

// Resolve maps a barcode to a product. On a local hit the stored reviews
// are aggregated for the requesting user. On a local miss the external
// lookup is consulted once; a lookup miss and a lookup outage both fail
// open to the Unresolved outcome.
func (s *Service) Resolve(ctx context.Context, barcode string, userID int64) (Resolution, error) {
	product, err := s.store.GetProduct(ctx, barcode)
	switch {
	case err == nil:
		reviews, err := s.store.ListReviews(ctx, barcode)
		if err != nil {
			s.log.StoreError("list reviews", err)
			return Resolution{}, apperr.Wrap(apperr.KindUnavailable, "could not load reviews", err).WithOp("catalog.Resolve")
		}
		return Resolution{
			Outcome: ResolvedLocal,
			Product: product,
			View:    Aggregate(reviews, userID),
		}, nil

	case errors.Is(err, repository.ErrProductNotFound):
		// fall through to the external lookup

	default:
		s.log.StoreError("get product", err)
		return Resolution{}, apperr.Wrap(apperr.KindUnavailable, "could not load product", err).WithOp("catalog.Resolve")
	}

	// Concurrent turns asking about the same barcode share one upstream
	// call; the API has no reason to be asked twice at once.
	shared, _, _ := s.lookupGroup.Do(barcode, func() (interface{}, error) {
		return s.lookup.Lookup(ctx, barcode), nil
	})
	result := shared.(openfoodfacts.Result)

	if result.Status != openfoodfacts.StatusFound {
		s.log.LookupMiss(barcode, result.Status == openfoodfacts.StatusUnavailable)
		return Resolution{Outcome: Unresolved}, nil
	}

	name := result.DisplayName()
	s.bus.Publish(ctx, events.ProductSeeded{
		BaseEvent: events.NewBaseEvent(),
		Barcode:   barcode,
		Name:      name,
	})

	return Resolution{
		Outcome:         ResolvedExternal,
		ProvisionalName: name,
	}, nil
}

// Submit validates and writes one review. The product's display name is
// always merged first; the review is created, or overwritten in place
// when ExistingReviewID is set. The two writes are independent atomic
// operations; losing the second only risks a stale product name.
func (s *Service) Submit(ctx context.Context, sub Submission) (repository.Review, error) {
	if err := s.val.Struct(sub); err != nil {
		return repository.Review{}, apperr.Wrap(apperr.KindValidation, "invalid review submission", err).WithOp("catalog.Submit")
	}

	if err := s.store.UpsertProductName(ctx, sub.Barcode, sub.ProductName); err != nil {
		s.log.StoreError("upsert product name", err)
		return repository.Review{}, apperr.Wrap(apperr.KindUnavailable, "could not save product", err).WithOp("catalog.Submit")
	}

	var (
		review repository.Review
		err    error
	)
	if sub.ExistingReviewID != nil {
		review, err = s.store.UpdateReview(ctx, *sub.ExistingReviewID, sub.UserID, sub.Rating, sub.Text)
	} else {
		review, err = s.store.CreateReview(ctx, sub.Barcode, sub.UserID, sub.Rating, sub.Text)
	}
	if err != nil {
		s.log.StoreError("write review", err)
		return repository.Review{}, apperr.Wrap(apperr.KindUnavailable, "could not save review", err).WithOp("catalog.Submit")
	}

	s.bus.Publish(ctx, events.ReviewSubmitted{
		BaseEvent: events.NewBaseEvent(),
		Barcode:   sub.Barcode,
		UserID:    sub.UserID,
		ReviewID:  review.ID,
		Rating:    review.Rating,
		Updated:   sub.ExistingReviewID != nil,
	})

	return review, nil
}
