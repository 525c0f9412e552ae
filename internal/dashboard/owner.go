package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/store-ratings/internal/aggregate"
	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/session"
)

// OwnerView is the snapshot the store owner dashboard renders. Summary,
// Histogram and Positive describe the selected store; Ratings is its feedback
// list after the bucket filter, search and sort.
type OwnerView struct {
	Stores    []domain.StoreView
	Selected  domain.StoreView
	Empty     bool
	Summary   aggregate.Summary
	Histogram aggregate.Histogram
	Positive  int
	Ratings   []domain.RatingView
	Params    query.Params
	Loaded    bool
}

// Owner is the store owner dashboard.
type Owner struct {
	client Client
	id     domain.Identity
	gate   *gate
	notes  *notices

	mu       sync.Mutex
	params   query.Params
	stores   []domain.StoreView
	ratings  []domain.RatingView
	selected string
	loaded   bool
}

// NewOwner opens the owner dashboard for an Owner-state session.
func NewOwner(client Client, sess *session.Session, logger *log.Logger) (*Owner, error) {
	id, err := opened(sess, session.Owner)
	if err != nil {
		return nil, err
	}
	return &Owner{
		client: client,
		id:     id,
		gate:   newGate(sess),
		notes:  newNotices(logger),
	}, nil
}

// Refresh fetches the owner's stores and every rating left on them.
func (o *Owner) Refresh(ctx context.Context) error {
	if err := o.gate.alive(); err != nil {
		return err
	}
	token := o.gate.begin()

	var (
		all     []domain.StoreView
		ratings []domain.RatingView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = o.client.ListStores(gctx, query.Params{}, "")
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = o.client.ListRatingsForOwner(gctx, o.id.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		if !o.gate.apply(token, func() {}) {
			return nil
		}
		return o.notes.fail("fetch store data", err)
	}

	owned := make([]domain.StoreView, 0, len(all))
	for _, s := range query.Stores(all, query.Params{}) {
		if s.OwnerID == o.id.UserID {
			owned = append(owned, s)
		}
	}

	o.gate.apply(token, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.stores, o.ratings = owned, ratings
		o.loaded = true
		if _, ok := findStore(o.stores, o.selected); !ok {
			o.selected = ""
			if len(o.stores) > 0 {
				o.selected = o.stores[0].ID
			}
		}
	})
	return nil
}

// SelectStore switches the performance panel and ratings list to another
// owned store and reloads that store's ratings. If the reload fails the
// selection still moves and the ratings from the last refresh stay in place.
func (o *Owner) SelectStore(ctx context.Context, storeID string) error {
	if err := o.gate.alive(); err != nil {
		return err
	}
	o.mu.Lock()
	_, ok := findStore(o.stores, storeID)
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("select store %q: %w", storeID, domain.ErrNotFound)
	}
	token := o.gate.beginWith(func() {
		o.mu.Lock()
		o.selected = storeID
		o.mu.Unlock()
	})

	ratings, err := o.client.ListRatingsForStore(ctx, storeID)
	if err != nil {
		if !o.gate.apply(token, func() {}) {
			return nil
		}
		return o.notes.fail("fetch store ratings", err)
	}
	o.gate.apply(token, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		kept := make([]domain.RatingView, 0, len(o.ratings)+len(ratings))
		for _, r := range o.ratings {
			if r.StoreID != storeID {
				kept = append(kept, r)
			}
		}
		o.ratings = append(kept, ratings...)
	})
	return nil
}

// SetQuery changes the ratings list options. Ratings are already held, so no
// request is issued.
func (o *Owner) SetQuery(p query.Params) {
	o.mu.Lock()
	o.params = query.RatingSpec.Normalize(p)
	o.mu.Unlock()
}

// View returns the current snapshot. An owner without stores gets Empty set
// rather than an error.
func (o *Owner) View() OwnerView {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := OwnerView{
		Stores: append([]domain.StoreView(nil), o.stores...),
		Empty:  o.loaded && len(o.stores) == 0,
		Params: query.RatingSpec.Normalize(o.params),
		Loaded: o.loaded,
	}
	selected, ok := findStore(o.stores, o.selected)
	if !ok {
		v.Ratings = []domain.RatingView{}
		return v
	}
	v.Selected = selected

	mine := make([]domain.RatingView, 0, len(o.ratings))
	values := make([]domain.Rating, 0, len(o.ratings))
	for _, r := range o.ratings {
		if r.StoreID == selected.ID {
			mine = append(mine, r)
			values = append(values, r.Rating)
		}
	}
	v.Summary = aggregate.SummarizeRatings(values)
	v.Histogram = aggregate.HistogramOf(values)
	v.Positive = v.Histogram.Bucket(domain.BucketPositive)
	v.Ratings = query.Ratings(mine, o.params)
	return v
}

// EditStore updates the selected store's name, email and address.
func (o *Owner) EditStore(ctx context.Context, in domain.StoreUpdate) error {
	if err := o.gate.alive(); err != nil {
		return err
	}
	o.mu.Lock()
	storeID := o.selected
	o.mu.Unlock()
	if storeID == "" {
		return o.notes.fail("update store", fmt.Errorf("no store selected: %w", domain.ErrNotFound))
	}

	in = in.Normalize()
	if in.Cancelled() {
		return nil
	}
	if err := in.Validate(); err != nil {
		return o.notes.fail("update store", err)
	}
	if _, err := o.client.UpdateStore(ctx, storeID, in); err != nil {
		return o.notes.fail("update store", err)
	}
	o.notes.info("Store updated successfully!")
	return o.Refresh(ctx)
}

// ChangePassword updates the owner's own password.
func (o *Owner) ChangePassword(ctx context.Context, in domain.PasswordChange) error {
	return changePassword(ctx, o.client, o.gate, o.notes, o.id.UserID, in)
}

// Notice returns the current banner.
func (o *Owner) Notice() Notice { return o.notes.get() }

// Identity is the owner this dashboard belongs to.
func (o *Owner) Identity() domain.Identity { return o.id }

func findStore(stores []domain.StoreView, id string) (domain.StoreView, bool) {
	if id == "" {
		return domain.StoreView{}, false
	}
	for _, s := range stores {
		if s.ID == id {
			return s, true
		}
	}
	return domain.StoreView{}, false
}
