package service

import (
	"testing"
	"time"

	"scanrate_backend/internal/catalog/repository"

	"github.com/google/uuid"
)

func review(userID int64, rating int, writtenAt time.Time) repository.Review {
	return repository.Review{
		ID:        uuid.New(),
		Barcode:   "04912345",
		UserID:    userID,
		Rating:    rating,
		Text:      "text",
		CreatedAt: writtenAt,
		UpdatedAt: writtenAt,
	}
}

func TestAggregateFirstTimeReviewerSeesEverything(t *testing.T) {
	base := time.Now()
	reviews := []repository.Review{
		review(10, 2, base),
		review(20, 5, base.Add(time.Minute)),
	}

	view := Aggregate(reviews, 30)

	if view.HasReviewed() {
		t.Fatal("user 30 has not reviewed this product")
	}
	if len(view.Others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(view.Others))
	}
	if view.Best != nil || view.Worst != nil {
		t.Fatal("best/worst must not be computed for first-time reviewers")
	}
}

func TestAggregateReturningReviewerGetsBestAndWorst(t *testing.T) {
	base := time.Now()
	reviews := []repository.Review{
		review(10, 2, base),
		review(20, 5, base.Add(time.Minute)),
	}

	view := Aggregate(reviews, 10)

	if !view.HasReviewed() {
		t.Fatal("user 10 already reviewed this product")
	}
	if view.Mine.Rating != 2 {
		t.Fatalf("expected own rating 2, got %d", view.Mine.Rating)
	}
	if len(view.Others) != 1 {
		t.Fatalf("expected 1 other, got %d", len(view.Others))
	}
	if view.Best == nil || view.Worst == nil {
		t.Fatal("expected best and worst for a returning reviewer with others")
	}
	if view.Best.Rating != 5 || view.Worst.Rating != 5 {
		t.Fatalf("single other review must be both best and worst, got best=%d worst=%d",
			view.Best.Rating, view.Worst.Rating)
	}
}

func TestAggregateNeverCountsOwnReviewAmongOthers(t *testing.T) {
	base := time.Now()
	reviews := []repository.Review{
		review(10, 2, base),
		review(20, 5, base.Add(time.Minute)),
	}

	for _, userID := range []int64{10, 20} {
		view := Aggregate(reviews, userID)
		for _, other := range view.Others {
			if other.UserID == userID {
				t.Fatalf("user %d's own review leaked into others", userID)
			}
		}
		if view.Mine == nil || view.Mine.UserID != userID {
			t.Fatalf("user %d's own review missing from mine slot", userID)
		}
	}
}

func TestAggregateNoOthersMeansNoBestWorst(t *testing.T) {
	view := Aggregate([]repository.Review{review(10, 4, time.Now())}, 10)

	if view.Best != nil || view.Worst != nil {
		t.Fatal("a lone reviewer has no best/worst comparison")
	}
	if len(view.Others) != 0 {
		t.Fatalf("expected no others, got %d", len(view.Others))
	}
}

func TestAggregateTiesBreakOnMostRecentWrite(t *testing.T) {
	base := time.Now()
	older := review(20, 4, base)
	newer := review(40, 4, base.Add(time.Hour))
	reviews := []repository.Review{review(10, 3, base), older, newer}

	view := Aggregate(reviews, 10)

	if view.Best.UserID != 40 {
		t.Fatalf("expected most recent of tied ratings as best, got user %d", view.Best.UserID)
	}
	if view.Worst.UserID != 40 {
		t.Fatalf("expected most recent of tied ratings as worst, got user %d", view.Worst.UserID)
	}
}

func TestAggregateBestAndWorstSpanExtremes(t *testing.T) {
	base := time.Now()
	reviews := []repository.Review{
		review(10, 3, base),
		review(20, 1, base.Add(time.Minute)),
		review(30, 5, base.Add(2*time.Minute)),
		review(40, 4, base.Add(3*time.Minute)),
	}

	view := Aggregate(reviews, 10)

	if view.Best.Rating != 5 {
		t.Fatalf("expected best rating 5, got %d", view.Best.Rating)
	}
	if view.Worst.Rating != 1 {
		t.Fatalf("expected worst rating 1, got %d", view.Worst.Rating)
	}
}
