package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/session"
)

// UserCard is one store card with its merged rating widget.
type UserCard struct {
	Store  domain.StoreView
	Widget session.Widget
}

// UserView is the snapshot the user dashboard renders.
type UserView struct {
	Cards  []UserCard
	Params query.Params
	Loaded bool
}

// User is the customer dashboard.
type User struct {
	client Client
	sess   *session.Session
	id     domain.Identity
	gate   *gate
	notes  *notices

	mu     sync.Mutex
	params query.Params
	stores []domain.StoreView
	loaded bool
}

// NewUser opens the user dashboard for a User-state session.
func NewUser(client Client, sess *session.Session, logger *log.Logger) (*User, error) {
	id, err := opened(sess, session.User)
	if err != nil {
		return nil, err
	}
	return &User{
		client: client,
		sess:   sess,
		id:     id,
		gate:   newGate(sess),
		notes:  newNotices(logger),
	}, nil
}

// Refresh fetches the stores matching the current search, annotated with the
// user's own ratings. Pending drafts are untouched.
func (u *User) Refresh(ctx context.Context) error {
	if err := u.gate.alive(); err != nil {
		return err
	}
	var search string
	token := u.gate.beginWith(func() {
		u.mu.Lock()
		search = u.params.Search
		u.mu.Unlock()
	})
	return u.fetch(ctx, token, search)
}

// SetQuery changes the search and sort options and re-fetches.
func (u *User) SetQuery(ctx context.Context, p query.Params) error {
	if err := u.gate.alive(); err != nil {
		return err
	}
	p = query.StoreSpec.Normalize(p)
	token := u.gate.beginWith(func() {
		u.mu.Lock()
		u.params = p
		u.mu.Unlock()
	})
	return u.fetch(ctx, token, p.Search)
}

// fetch asks for the stores unsorted. The server returns them in storage
// order and View sorts from there, so desc stays the mirror of asc.
func (u *User) fetch(ctx context.Context, token uint64, search string) error {
	stores, err := u.client.ListStores(ctx, query.Params{Search: search}, u.id.UserID)
	if err != nil {
		if !u.gate.apply(token, func() {}) {
			return nil
		}
		return u.notes.fail("fetch stores", err)
	}

	u.gate.apply(token, func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.stores = stores
		u.loaded = true
	})
	return nil
}

// View returns the current cards, searched and sorted by the current
// options, with drafts merged over fetched ratings.
func (u *User) View() UserView {
	drafts := u.sess.Drafts()
	u.mu.Lock()
	defer u.mu.Unlock()

	stores := query.Stores(u.stores, u.params)
	cards := make([]UserCard, 0, len(stores))
	for _, s := range stores {
		cards = append(cards, UserCard{Store: s, Widget: drafts.Widget(s)})
	}
	return UserView{
		Cards:  cards,
		Params: query.StoreSpec.Normalize(u.params),
		Loaded: u.loaded,
	}
}

// SelectStars records a star choice for a store without submitting it.
func (u *User) SelectStars(storeID string, stars int) error {
	if err := u.gate.alive(); err != nil {
		return err
	}
	if err := u.sess.Drafts().SetStars(storeID, stars); err != nil {
		return u.notes.fail("select rating", err)
	}
	return nil
}

// EditComment records comment text for a store without submitting it.
func (u *User) EditComment(storeID, comment string) error {
	if err := u.gate.alive(); err != nil {
		return err
	}
	u.sess.Drafts().SetComment(storeID, comment)
	return nil
}

// Submit sends the merged rating of a store. A missing star value fails before
// any request. On success the draft is dropped and the list is re-fetched; a
// failed re-fetch only changes the notice, since the rating is already saved.
func (u *User) Submit(ctx context.Context, storeID string) error {
	if err := u.gate.alive(); err != nil {
		return err
	}
	u.mu.Lock()
	store, ok := findStore(u.stores, storeID)
	u.mu.Unlock()
	if !ok {
		return u.notes.fail("submit rating", fmt.Errorf("store %q: %w", storeID, domain.ErrNotFound))
	}

	drafts := u.sess.Drafts()
	in, err := drafts.Submission(u.id.UserID, store)
	if err != nil {
		return u.notes.fail("submit rating", err)
	}
	if _, _, err := u.client.UpsertRating(ctx, in); err != nil {
		return u.notes.fail("submit rating", err)
	}

	// Supersede refreshes still in flight: they predate the upsert.
	u.gate.apply(u.gate.begin(), func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		for i := range u.stores {
			if u.stores[i].ID == storeID {
				u.stores[i].MyRating = in.Value
				u.stores[i].MyComment = in.Comment
			}
		}
	})
	drafts.Clear(storeID)
	u.notes.info("Rating submitted!")
	if err := u.Refresh(ctx); err != nil {
		u.notes.info("Rating submitted! The store list could not be refreshed.")
	}
	return nil
}

// ChangePassword updates the user's own password.
func (u *User) ChangePassword(ctx context.Context, in domain.PasswordChange) error {
	return changePassword(ctx, u.client, u.gate, u.notes, u.id.UserID, in)
}

// Notice returns the current banner.
func (u *User) Notice() Notice { return u.notes.get() }

// Identity is the user this dashboard belongs to.
func (u *User) Identity() domain.Identity { return u.id }
