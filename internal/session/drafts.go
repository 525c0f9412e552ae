package session

import (
	"sync"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// Draft is a locally composed, unsubmitted rating edit for one store. Stars and
// comment are tracked separately so that an edited empty comment still
// overrides the fetched one.
type Draft struct {
	Stars      int
	Comment    string
	HasStars   bool
	HasComment bool
}

// Drafts holds pending edits keyed by store id. Edits survive re-fetches driven
// by search or sort changes and are dropped on submit success or logout.
type Drafts struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

// NewDrafts returns an empty draft store.
func NewDrafts() *Drafts {
	return &Drafts{drafts: make(map[string]Draft)}
}

// SetStars records a star selection.
func (d *Drafts) SetStars(storeID string, stars int) error {
	if !domain.ValidStars(stars) {
		return domain.FieldError("rating", "rating must be between 1 and 5")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	dr := d.drafts[storeID]
	dr.Stars, dr.HasStars = stars, true
	d.drafts[storeID] = dr
	return nil
}

// SetComment records comment text, including an empty string.
func (d *Drafts) SetComment(storeID, comment string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr := d.drafts[storeID]
	dr.Comment, dr.HasComment = comment, true
	d.drafts[storeID] = dr
}

// Get returns the draft for a store, if any.
func (d *Drafts) Get(storeID string) (Draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.drafts[storeID]
	return dr, ok
}

// Clear drops the draft of one store.
func (d *Drafts) Clear(storeID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, storeID)
}

// Reset drops every draft.
func (d *Drafts) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.drafts)
}

// Len is the number of stores with pending edits.
func (d *Drafts) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.drafts)
}

// Widget is the displayed rating state of one store card.
type Widget struct {
	StoreID string
	// Stars is the draft value, else the user's submitted rating, else 0.
	Stars int
	// Comment follows the same precedence as Stars.
	Comment string
	// Submitted is the fetched own rating, used for the "you rated this" hint.
	Submitted int
	Dirty     bool
}

// Widget merges the fetched own rating of a store with any pending draft.
func (d *Drafts) Widget(store domain.StoreView) Widget {
	w := Widget{
		StoreID:   store.ID,
		Stars:     store.MyRating,
		Comment:   store.MyComment,
		Submitted: store.MyRating,
	}
	if dr, ok := d.Get(store.ID); ok {
		if dr.HasStars {
			w.Stars = dr.Stars
		}
		if dr.HasComment {
			w.Comment = dr.Comment
		}
		w.Dirty = dr.HasStars || dr.HasComment
	}
	return w
}

// Submission builds the upsert request for a store from its merged widget.
// It fails validation when no star value is selected.
func (d *Drafts) Submission(userID string, store domain.StoreView) (domain.RatingInput, error) {
	w := d.Widget(store)
	in := domain.RatingInput{
		UserID:  userID,
		StoreID: store.ID,
		Value:   w.Stars,
		Comment: w.Comment,
	}
	if err := in.Validate(); err != nil {
		return domain.RatingInput{}, err
	}
	return in, nil
}
