package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"scanrate_backend/internal/catalog/repository"
	"scanrate_backend/internal/events"
	"scanrate_backend/internal/openfoodfacts"
	"scanrate_backend/platform/apperr"
	"scanrate_backend/platform/logger"
	"scanrate_backend/platform/validator"

	"github.com/google/uuid"
)

type fakeStore struct {
	products map[string]repository.Product
	reviews  map[string][]repository.Review
	failGet  bool
	failPut  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]repository.Product),
		reviews:  make(map[string][]repository.Review),
	}
}

func (s *fakeStore) GetProduct(_ context.Context, barcode string) (repository.Product, error) {
	if s.failGet {
		return repository.Product{}, errors.New("connection refused")
	}
	p, ok := s.products[barcode]
	if !ok {
		return repository.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *fakeStore) UpsertProductName(_ context.Context, barcode string, name string) error {
	if s.failPut {
		return errors.New("connection refused")
	}
	p := s.products[barcode]
	p.Barcode = barcode
	p.Name = name
	p.UpdatedAt = time.Now()
	s.products[barcode] = p
	return nil
}

func (s *fakeStore) ListReviews(_ context.Context, barcode string) ([]repository.Review, error) {
	return s.reviews[barcode], nil
}

func (s *fakeStore) CreateReview(_ context.Context, barcode string, userID int64, rating int, text string) (repository.Review, error) {
	rev := repository.Review{
		ID:        uuid.New(),
		Barcode:   barcode,
		UserID:    userID,
		Rating:    rating,
		Text:      text,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.reviews[barcode] = append(s.reviews[barcode], rev)
	return rev, nil
}

func (s *fakeStore) UpdateReview(_ context.Context, id uuid.UUID, userID int64, rating int, text string) (repository.Review, error) {
	for barcode, list := range s.reviews {
		for i, rev := range list {
			if rev.ID == id && rev.UserID == userID {
				rev.Rating = rating
				rev.Text = text
				rev.UpdatedAt = time.Now()
				s.reviews[barcode][i] = rev
				return rev, nil
			}
		}
	}
	return repository.Review{}, repository.ErrReviewNotFound
}

type fakeLookup struct {
	result openfoodfacts.Result
	calls  int
}

func (l *fakeLookup) Lookup(_ context.Context, _ string) openfoodfacts.Result {
	l.calls++
	return l.result
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newTestService(store *fakeStore, lookup *fakeLookup) (*Service, *recordingBus) {
	bus := &recordingBus{}
	svc := New(store, lookup, bus, validator.New(), logger.New("development"))
	return svc, bus
}

func TestResolveSeedsNameFromLookup(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{result: openfoodfacts.Result{
		Status: openfoodfacts.StatusFound,
		Name:   "Oat Bar",
		Brands: "Acme",
	}}
	svc, bus := newTestService(store, lookup)

	res, err := svc.Resolve(context.Background(), "04912345", 30)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != ResolvedExternal {
		t.Fatalf("expected ResolvedExternal, got %v", res.Outcome)
	}
	if res.ProvisionalName != "Oat Bar (Acme)" {
		t.Fatalf("expected provisional name %q, got %q", "Oat Bar (Acme)", res.ProvisionalName)
	}
	if len(store.products) != 0 {
		t.Fatal("provisional name must not be persisted by Resolve")
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "catalog.product.seeded" {
		t.Fatalf("expected one product.seeded event, got %v", bus.published)
	}
}

func TestResolveFailsOpenOnLookupOutage(t *testing.T) {
	for _, status := range []openfoodfacts.Status{openfoodfacts.StatusNotFound, openfoodfacts.StatusUnavailable} {
		svc, _ := newTestService(newFakeStore(), &fakeLookup{result: openfoodfacts.Result{Status: status}})

		res, err := svc.Resolve(context.Background(), "04912345", 30)
		if err != nil {
			t.Fatalf("status %v: Resolve must not fail the conversation: %v", status, err)
		}
		if res.Outcome != Unresolved {
			t.Fatalf("status %v: expected Unresolved, got %v", status, res.Outcome)
		}
	}
}

func TestResolveLocalHitSkipsLookup(t *testing.T) {
	store := newFakeStore()
	store.products["04912345"] = repository.Product{Barcode: "04912345", Name: "Oat Bar (Acme)"}
	store.reviews["04912345"] = []repository.Review{
		{ID: uuid.New(), Barcode: "04912345", UserID: 10, Rating: 2},
		{ID: uuid.New(), Barcode: "04912345", UserID: 20, Rating: 5},
	}
	lookup := &fakeLookup{}
	svc, _ := newTestService(store, lookup)

	res, err := svc.Resolve(context.Background(), "04912345", 30)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Outcome != ResolvedLocal {
		t.Fatalf("expected ResolvedLocal, got %v", res.Outcome)
	}
	if lookup.calls != 0 {
		t.Fatalf("lookup must not be called on a local hit, got %d calls", lookup.calls)
	}
	if res.View.HasReviewed() {
		t.Fatal("user 30 has no review yet")
	}
	if len(res.View.Others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(res.View.Others))
	}
}

func TestResolveStoreFailureIsUnavailable(t *testing.T) {
	store := newFakeStore()
	store.failGet = true
	svc, _ := newTestService(store, &fakeLookup{})

	_, err := svc.Resolve(context.Background(), "04912345", 30)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestSubmitCreatesExactlyOneReview(t *testing.T) {
	store := newFakeStore()
	svc, bus := newTestService(store, &fakeLookup{})

	_, err := svc.Submit(context.Background(), Submission{
		Barcode:     "04912345",
		ProductName: "Oat Bar (Acme)",
		UserID:      30,
		Rating:      4,
		Text:        "pretty good",
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got := len(store.reviews["04912345"]); got != 1 {
		t.Fatalf("expected exactly one review, got %d", got)
	}
	if store.products["04912345"].Name != "Oat Bar (Acme)" {
		t.Fatalf("product name not upserted, got %q", store.products["04912345"].Name)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "catalog.review.submitted" {
		t.Fatalf("expected one review.submitted event, got %v", bus.published)
	}
}

func TestSubmitOverwritesExistingReviewInPlace(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeLookup{})

	first, err := svc.Submit(context.Background(), Submission{
		Barcode:     "04912345",
		ProductName: "Oat Bar",
		UserID:      10,
		Rating:      2,
		Text:        "stale",
	})
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}

	updated, err := svc.Submit(context.Background(), Submission{
		Barcode:          "04912345",
		ProductName:      "Oat Bar",
		UserID:           10,
		Rating:           5,
		Text:             "fresh batch",
		ExistingReviewID: &first.ID,
	})
	if err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}

	if got := len(store.reviews["04912345"]); got != 1 {
		t.Fatalf("resubmission must not add a review, got %d", got)
	}
	if updated.ID != first.ID {
		t.Fatal("overwrite must preserve the review identity")
	}
	if updated.Rating != 5 || updated.Text != "fresh batch" {
		t.Fatalf("review not overwritten: %+v", updated)
	}
}

func TestSubmitNameMergeLastWriteWins(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeLookup{})

	for i, name := range []string{"Name A", "Name B"} {
		_, err := svc.Submit(context.Background(), Submission{
			Barcode:     "04912345",
			ProductName: name,
			UserID:      int64(10 + i),
			Rating:      3,
			Text:        "ok",
		})
		if err != nil {
			t.Fatalf("Submit %q returned error: %v", name, err)
		}
	}

	if got := store.products["04912345"].Name; got != "Name B" {
		t.Fatalf("expected last merged name %q, got %q", "Name B", got)
	}
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakeLookup{})

	for _, rating := range []int{0, 6, -1, 7} {
		_, err := svc.Submit(context.Background(), Submission{
			Barcode:     "04912345",
			ProductName: "Oat Bar",
			UserID:      30,
			Rating:      rating,
			Text:        "nope",
		})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("rating %d: expected KindValidation, got %v", rating, err)
		}
	}
	if len(store.reviews["04912345"]) != 0 {
		t.Fatal("invalid rating must be rejected before persistence")
	}
}
