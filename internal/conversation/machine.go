package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scanrate_backend/internal/barcode"
	"scanrate_backend/internal/catalog/repository"
	"scanrate_backend/internal/catalog/service"
	"scanrate_backend/internal/telegram"
	"scanrate_backend/platform/logger"
)

// fallbackProductName is written when the user skipped naming an
// unresolved product and went straight to rating it.
const fallbackProductName = "Unnamed product"

// Catalog is the product and review surface the dialogue drives.
type Catalog interface {
	Resolve(ctx context.Context, code string, userID int64) (service.Resolution, error)
	Submit(ctx context.Context, sub service.Submission) (repository.Review, error)
}

// SessionStore persists one Session per user between turns.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Put(ctx context.Context, userID int64, sess Session) error
	Clear(ctx context.Context, userID int64) error
}

// InputKind distinguishes a typed message from a set of text fragments
// recognized off a photo. InputPhotoUnsupported marks a photo received
// while no recognizer is configured.
type InputKind int

const (
	InputText InputKind = iota
	InputFragments
	InputPhotoUnsupported
)

// Input is one inbound user turn, already stripped of transport detail.
type Input struct {
	Kind      InputKind
	Text      string
	Fragments []string
}

// Reply is one outbound message. Markup may be nil.
type Reply struct {
	Text   string
	Markup telegram.ReplyMarkup
}

// Machine runs the rating dialogue. Each turn loads the user's session,
// applies the input, saves the next session and returns the replies to
// send. Turns for the same user are serialized.
type Machine struct {
	sessions SessionStore
	catalog  Catalog
	prompts  Prompts
	log      *logger.Logger
	locks    *userLocks
}

// NewMachine creates the dialogue state machine.
func NewMachine(sessions SessionStore, catalog Catalog, prompts Prompts, log *logger.Logger) *Machine {
	return &Machine{
		sessions: sessions,
		catalog:  catalog,
		prompts:  prompts,
		log:      log,
		locks:    newUserLocks(),
	}
}

// HandleStart resets the dialogue and greets the user.
func (m *Machine) HandleStart(ctx context.Context, userID int64) []Reply {
	lock := m.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.sessions.Clear(ctx, userID); err != nil {
		m.log.WithUserID(userID).Error("clear session", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}
	return []Reply{{Text: m.prompts.Start, Markup: telegram.RemoveKeyboard()}}
}

// HandleCancel abandons whatever the user was doing. Nothing already
// submitted is touched.
func (m *Machine) HandleCancel(ctx context.Context, userID int64) []Reply {
	lock := m.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.sessions.Clear(ctx, userID); err != nil {
		m.log.WithUserID(userID).Error("clear session", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}
	return []Reply{{Text: m.prompts.Cancelled, Markup: telegram.RemoveKeyboard()}}
}

// Handle applies one user turn to the session and returns the replies.
// Dependency failures leave the session untouched so the user can retry
// the same message.
func (m *Machine) Handle(ctx context.Context, userID int64, in Input) []Reply {
	lock := m.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.sessions.Get(ctx, userID)
	if err != nil {
		m.log.WithUserID(userID).Error("load session", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}

	switch cur := sess.(type) {
	case AwaitingCode:
		return m.handleCode(ctx, userID, in)
	case AwaitingQuality:
		return m.handleQuality(ctx, userID, cur, in)
	case AwaitingReview:
		return m.handleReview(ctx, userID, cur, in)
	case ConfirmUpdate:
		return m.handleConfirm(ctx, userID, cur, in)
	default:
		return m.handleCode(ctx, userID, in)
	}
}

func (m *Machine) handleCode(ctx context.Context, userID int64, in Input) []Reply {
	var (
		code       string
		recognized bool
	)
	switch in.Kind {
	case InputPhotoUnsupported:
		return []Reply{{Text: m.prompts.PhotoUnsupported}}
	case InputFragments:
		candidate, ok := barcode.FirstCandidate(in.Fragments)
		if !ok {
			return []Reply{{Text: m.prompts.RecognitionFailed}}
		}
		code = candidate
		recognized = true
	default:
		typed := strings.TrimSpace(in.Text)
		if !barcode.IsCode(typed) {
			return []Reply{{Text: m.prompts.EmptyCode}}
		}
		code = typed
	}

	var replies []Reply
	if recognized {
		replies = append(replies, Reply{Text: fmt.Sprintf(m.prompts.Recognized, code)})
	}

	res, err := m.catalog.Resolve(ctx, code, userID)
	if err != nil {
		m.log.WithUserID(userID).Error("resolve barcode", "error", err)
		return append(replies, Reply{Text: m.prompts.TryAgain})
	}

	switch res.Outcome {
	case service.ResolvedLocal:
		if res.View.HasReviewed() {
			replies = append(replies, m.reviewSummary(res)...)
			replies = append(replies, Reply{
				Text:   m.prompts.AskUpdate,
				Markup: telegram.RowKeyboard("Yes", "No"),
			})
			return m.transition(ctx, userID, StateAwaitingCode, ConfirmUpdate{
				Barcode:          code,
				ProductName:      res.Product.Name,
				ExistingReviewID: res.View.Mine.ID,
			}, replies)
		}
		replies = append(replies,
			Reply{Text: m.productOverview(res)},
			Reply{Text: m.prompts.AskQuality, Markup: ratingKeyboard()},
		)
		return m.transition(ctx, userID, StateAwaitingCode, AwaitingQuality{
			Barcode:     code,
			ProductName: res.Product.Name,
		}, replies)

	case service.ResolvedExternal:
		replies = append(replies,
			Reply{Text: m.prompts.Searching},
			Reply{Text: fmt.Sprintf(m.prompts.FoundOnline, res.ProvisionalName), Markup: ratingKeyboard()},
		)
		return m.transition(ctx, userID, StateAwaitingCode, AwaitingQuality{
			Barcode:     code,
			ProductName: res.ProvisionalName,
		}, replies)

	default:
		replies = append(replies,
			Reply{Text: m.prompts.Searching},
			Reply{Text: m.prompts.NotFoundOnline, Markup: telegram.RemoveKeyboard()},
		)
		return m.transition(ctx, userID, StateAwaitingCode, AwaitingQuality{
			Barcode:     code,
			NamePending: true,
		}, replies)
	}
}

func (m *Machine) handleQuality(ctx context.Context, userID int64, cur AwaitingQuality, in Input) []Reply {
	if in.Kind != InputText {
		if cur.NamePending {
			return []Reply{{Text: m.prompts.NotFoundOnline}}
		}
		return []Reply{{Text: m.prompts.InvalidQuality, Markup: ratingKeyboard()}}
	}

	text := strings.TrimSpace(in.Text)
	rating, isNumber := parseRating(text)

	// On the manual-name branch any non-numeric message is the name;
	// a number, even out of range, is taken as a rating attempt.
	if cur.NamePending && !isNumber {
		if text == "" {
			return []Reply{{Text: m.prompts.NotFoundOnline}}
		}
		next := cur
		next.ProductName = text
		next.NamePending = false
		return m.transition(ctx, userID, cur.State(), next, []Reply{{
			Text:   fmt.Sprintf(m.prompts.NameAccepted, text),
			Markup: ratingKeyboard(),
		}})
	}

	if !isNumber || rating < 1 || rating > 5 {
		return []Reply{{Text: m.prompts.InvalidQuality, Markup: ratingKeyboard()}}
	}

	return m.transition(ctx, userID, cur.State(), AwaitingReview{
		Barcode:          cur.Barcode,
		ProductName:      cur.ProductName,
		Quality:          rating,
		ExistingReviewID: cur.ExistingReviewID,
	}, []Reply{{Text: m.prompts.AskReview, Markup: telegram.RemoveKeyboard()}})
}

func (m *Machine) handleReview(ctx context.Context, userID int64, cur AwaitingReview, in Input) []Reply {
	text := strings.TrimSpace(in.Text)
	if in.Kind != InputText || text == "" {
		return []Reply{{Text: m.prompts.AskReview}}
	}

	_, err := m.catalog.Submit(ctx, service.Submission{
		Barcode:          cur.Barcode,
		ProductName:      displayName(cur.ProductName),
		UserID:           userID,
		Rating:           cur.Quality,
		Text:             text,
		ExistingReviewID: cur.ExistingReviewID,
	})
	if err != nil {
		m.log.WithUserID(userID).Error("submit review", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}

	if err := m.sessions.Clear(ctx, userID); err != nil {
		// The review is saved; a stale session only re-prompts for text,
		// so report success anyway.
		m.log.WithUserID(userID).Error("clear session", "error", err)
	}
	m.log.Turn(userID, string(cur.State()), string(StateAwaitingCode))
	return []Reply{{Text: m.prompts.Thanks, Markup: telegram.RemoveKeyboard()}}
}

func (m *Machine) handleConfirm(ctx context.Context, userID int64, cur ConfirmUpdate, in Input) []Reply {
	if in.Kind != InputText {
		return []Reply{{Text: m.prompts.AskUpdate, Markup: telegram.RowKeyboard("Yes", "No")}}
	}

	answer := strings.TrimSpace(in.Text)
	if strings.EqualFold(answer, "yes") {
		id := cur.ExistingReviewID
		return m.transition(ctx, userID, cur.State(), AwaitingQuality{
			Barcode:          cur.Barcode,
			ProductName:      cur.ProductName,
			ExistingReviewID: &id,
		}, []Reply{{Text: m.prompts.AskQuality, Markup: ratingKeyboard()}})
	}

	// Anything but an explicit yes keeps the stored review.
	if err := m.sessions.Clear(ctx, userID); err != nil {
		m.log.WithUserID(userID).Error("clear session", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}
	m.log.Turn(userID, string(cur.State()), string(StateAwaitingCode))
	return []Reply{{Text: m.prompts.KeepExisting, Markup: telegram.RemoveKeyboard()}}
}

// transition saves the next session and logs the state change. A failed
// save drops the turn instead of leaving the dialogue half-moved.
func (m *Machine) transition(ctx context.Context, userID int64, from State, next Session, replies []Reply) []Reply {
	if err := m.sessions.Put(ctx, userID, next); err != nil {
		m.log.WithUserID(userID).Error("save session", "error", err)
		return []Reply{{Text: m.prompts.TryAgain}}
	}
	m.log.Turn(userID, string(from), string(next.State()))
	return replies
}

// productOverview renders the first-time reviewer's view of a product:
// its name and everyone's reviews so far.
func (m *Machine) productOverview(res service.Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, m.prompts.ProductHeader, displayName(res.Product.Name))

	if len(res.View.Others) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.prompts.ReviewsHeader)
		for _, rev := range res.View.Others {
			b.WriteString("\n")
			fmt.Fprintf(&b, m.prompts.ReviewLine, rev.Rating, rev.Text)
		}
	}
	return b.String()
}

// reviewSummary renders the returning reviewer's view of a product: the
// extremes of everyone else's reviews and their own.
func (m *Machine) reviewSummary(res service.Resolution) []Reply {
	var b strings.Builder
	fmt.Fprintf(&b, m.prompts.ProductHeader, displayName(res.Product.Name))

	if res.View.Worst != nil {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, m.prompts.WorstReview, res.View.Worst.Rating, res.View.Worst.Text)
	}
	if res.View.Best != nil {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, m.prompts.BestReview, res.View.Best.Rating, res.View.Best.Text)
	}
	if res.View.Worst == nil && res.View.Best == nil {
		b.WriteString("\n\n")
		b.WriteString(m.prompts.NoOtherReviews)
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, m.prompts.OwnReview, res.View.Mine.Rating, res.View.Mine.Text)

	return []Reply{{Text: b.String()}}
}

func ratingKeyboard() telegram.ReplyKeyboardMarkup {
	return telegram.RowKeyboard("1", "2", "3", "4", "5")
}

// parseRating reports whether text is an integer, and its value when so.
func parseRating(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return fallbackProductName
	}
	return name
}
