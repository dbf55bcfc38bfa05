package service

import "scanrate_backend/internal/catalog/repository"

// AggregateView is the computed summary of a product's reviews from one
// user's point of view. For a first-time reviewer only Others is set; for
// a returning reviewer Mine is set, and Best/Worst are the extremes of
// the other users' reviews when any exist.
type AggregateView struct {
	Mine   *repository.Review
	Others []repository.Review
	Best   *repository.Review
	Worst  *repository.Review
}

// HasReviewed reports whether the user already reviewed this product.
func (v AggregateView) HasReviewed() bool {
	return v.Mine != nil
}

// Aggregate partitions reviews into the user's own review and everyone
// else's, and selects the best and worst of the others by rating. Equal
// ratings are broken by the most recent write timestamp, so the selection
// is deterministic.
func Aggregate(reviews []repository.Review, userID int64) AggregateView {
	var view AggregateView
	for i := range reviews {
		rev := reviews[i]
		if rev.UserID == userID {
			view.Mine = &rev
			continue
		}
		view.Others = append(view.Others, rev)
	}

	// The best/worst comparison only supports the "update your review?"
	// decision, so it is computed for returning reviewers only.
	if view.Mine == nil || len(view.Others) == 0 {
		return view
	}

	for i := range view.Others {
		other := &view.Others[i]
		if view.Best == nil || higher(other, view.Best) {
			view.Best = other
		}
		if view.Worst == nil || lower(other, view.Worst) {
			view.Worst = other
		}
	}
	return view
}

// higher reports whether a replaces b as the best pick: higher rating
// wins, and on equal ratings the more recently written review wins.
func higher(a, b *repository.Review) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

// lower is the worst-pick counterpart of higher, with the same
// recency tie-break.
func lower(a, b *repository.Review) bool {
	if a.Rating != b.Rating {
		return a.Rating < b.Rating
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
