package dashboard

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/session"
)

// AdminUserRow is one line of the admin users table. For store owners it
// carries the average rating of the first store they own.
type AdminUserRow struct {
	domain.User
	OwnsStore        bool
	OwnedStoreRating float64
}

// AdminView is the snapshot the admin dashboard renders.
type AdminView struct {
	Stats       domain.Stats
	Users       []AdminUserRow
	Stores      []domain.StoreView
	UserParams  query.Params
	StoreParams query.Params
	Loaded      bool
}

// Admin is the administrator dashboard.
type Admin struct {
	client Client
	id     domain.Identity
	gate   *gate
	notes  *notices

	mu          sync.Mutex
	userParams  query.Params
	storeParams query.Params
	users       []domain.User
	stores      []domain.StoreView
	stats       domain.Stats
	loaded      bool
}

// NewAdmin opens the admin dashboard for an Admin-state session.
func NewAdmin(client Client, sess *session.Session, logger *log.Logger) (*Admin, error) {
	id, err := opened(sess, session.Admin)
	if err != nil {
		return nil, err
	}
	return &Admin{
		client: client,
		id:     id,
		gate:   newGate(sess),
		notes:  newNotices(logger),
	}, nil
}

// Refresh fetches users, every store and the stats as one snapshot. The store
// list is fetched unfiltered so owner ratings in the users table do not depend
// on the store search.
func (a *Admin) Refresh(ctx context.Context) error {
	if err := a.gate.alive(); err != nil {
		return err
	}
	var search string
	token := a.gate.beginWith(func() {
		a.mu.Lock()
		search = a.userParams.Search
		a.mu.Unlock()
	})
	return a.fetch(ctx, token, search)
}

// fetch loads both lists unsorted, in the server's storage order. View does
// all sorting from that base, so desc stays the mirror of asc.
func (a *Admin) fetch(ctx context.Context, token uint64, userSearch string) error {
	var (
		users  []domain.User
		stores []domain.StoreView
		stats  domain.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = a.client.ListUsers(gctx, query.Params{Search: userSearch})
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = a.client.ListStores(gctx, query.Params{}, "")
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = a.client.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if !a.gate.apply(token, func() {}) {
			return nil
		}
		return a.notes.fail("fetch dashboard data", err)
	}

	a.gate.apply(token, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.users, a.stores, a.stats = users, stores, stats
		a.loaded = true
	})
	return nil
}

// SetUserQuery changes the users table options and re-fetches.
func (a *Admin) SetUserQuery(ctx context.Context, p query.Params) error {
	if err := a.gate.alive(); err != nil {
		return err
	}
	p = query.UserSpec.Normalize(p)
	token := a.gate.beginWith(func() {
		a.mu.Lock()
		a.userParams = p
		a.mu.Unlock()
	})
	return a.fetch(ctx, token, p.Search)
}

// SetStoreQuery changes the stores table options. The full store list is
// already held, so no request is issued.
func (a *Admin) SetStoreQuery(p query.Params) {
	a.mu.Lock()
	a.storeParams = query.StoreSpec.Normalize(p)
	a.mu.Unlock()
}

// View returns the current snapshot with the view options applied.
func (a *Admin) View() AdminView {
	a.mu.Lock()
	defer a.mu.Unlock()

	owned := make(map[string]domain.StoreView)
	for _, s := range query.Stores(a.stores, query.Params{}) {
		if s.Unassigned() {
			continue
		}
		if _, ok := owned[s.OwnerID]; !ok {
			owned[s.OwnerID] = s
		}
	}

	users := query.Users(a.users, a.userParams)
	rows := make([]AdminUserRow, 0, len(users))
	for _, u := range users {
		row := AdminUserRow{User: u}
		if u.Role == domain.RoleStoreOwner {
			if s, ok := owned[u.ID]; ok {
				row.OwnsStore = true
				row.OwnedStoreRating = s.AverageRating
			}
		}
		rows = append(rows, row)
	}

	return AdminView{
		Stats:       a.stats,
		Users:       rows,
		Stores:      query.Stores(a.stores, a.storeParams),
		UserParams:  query.UserSpec.Normalize(a.userParams),
		StoreParams: query.StoreSpec.Normalize(a.storeParams),
		Loaded:      a.loaded,
	}
}

// CreateUser validates the whole form, submits it and re-fetches.
func (a *Admin) CreateUser(ctx context.Context, in domain.NewUser) error {
	if err := a.gate.alive(); err != nil {
		return err
	}
	in = in.Normalize()
	if in.Cancelled() {
		return nil
	}
	if err := in.Validate(); err != nil {
		return a.notes.fail("add user", err)
	}
	if _, err := a.client.CreateUser(ctx, in); err != nil {
		return a.notes.fail("add user", err)
	}
	a.notes.info("User added successfully!")
	return a.Refresh(ctx)
}

// CreateStore validates the whole form, submits it and re-fetches. The owner
// must be a known store owner.
func (a *Admin) CreateStore(ctx context.Context, in domain.NewStore) error {
	if err := a.gate.alive(); err != nil {
		return err
	}
	in = in.Normalize()
	if in.Cancelled() {
		return nil
	}
	if err := in.Validate(); err != nil {
		return a.notes.fail("add store", err)
	}
	if err := a.checkOwner(in.OwnerID); err != nil {
		return a.notes.fail("add store", err)
	}
	if _, err := a.client.CreateStore(ctx, in); err != nil {
		return a.notes.fail("add store", err)
	}
	a.notes.info("Store added successfully!")
	return a.Refresh(ctx)
}

// checkOwner rejects an owner id that names a loaded user without the
// store_owner role. Unknown ids are left to the server.
func (a *Admin) checkOwner(ownerID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.ID == ownerID && u.Role != domain.RoleStoreOwner {
			return domain.FieldError("owner_id", "owner must have the store_owner role")
		}
	}
	return nil
}

// ChangePassword updates the admin's own password.
func (a *Admin) ChangePassword(ctx context.Context, in domain.PasswordChange) error {
	return changePassword(ctx, a.client, a.gate, a.notes, a.id.UserID, in)
}

// Notice returns the current banner.
func (a *Admin) Notice() Notice { return a.notes.get() }

// Identity is the admin this dashboard belongs to.
func (a *Admin) Identity() domain.Identity { return a.id }
