package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Store is a rateable shop. OwnerID is empty when the store is unassigned.
type Store struct {
	ID        string
	Name      string
	Email     string
	Address   string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unassigned reports whether the store has no resolvable owner.
func (s Store) Unassigned() bool {
	return s.OwnerID == ""
}

// StoreView is a store annotated with its derived aggregates and, when listed
// for a specific user, that user's own prior rating.
type StoreView struct {
	Store
	AverageRating float64
	TotalRatings  int
	MyRating      int
	MyComment     string
}

// NewStore is the structured input for admin store creation.
type NewStore struct {
	Name    string
	Email   string
	Address string
	OwnerID string
}

// Normalize trims all fields and lower-cases the email.
func (in NewStore) Normalize() NewStore {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	return in
}

// Cancelled reports an abandoned add-store form.
func (in NewStore) Cancelled() bool {
	return in.Name == "" || in.Email == "" || in.Address == "" || in.OwnerID == ""
}

// Validate reports every field problem at once.
func (in NewStore) Validate() error {
	return validateStoreFields(in.Name, in.Email, in.Address)
}

// StoreUpdate carries the owner-editable store fields.
type StoreUpdate struct {
	Name    string
	Email   string
	Address string
}

// Normalize trims all fields and lower-cases the email.
func (u StoreUpdate) Normalize() StoreUpdate {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Address = strings.TrimSpace(u.Address)
	return u
}

// Cancelled reports an abandoned edit-store form.
func (u StoreUpdate) Cancelled() bool {
	return u.Name == "" || u.Email == "" || u.Address == ""
}

// Validate reports every field problem at once.
func (u StoreUpdate) Validate() error {
	return validateStoreFields(u.Name, u.Email, u.Address)
}

func validateStoreFields(name, email, address string) error {
	verr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "store name is required")
	}
	if !ValidEmail(email) {
		verr.Add("email", "valid email required")
	}
	if utf8.RuneCountInString(address) > maxAddressLen {
		verr.Add("address", "address too long (max 400 chars)")
	}
	return verr.OrNil()
}

// Stats are the platform-wide counters shown on the admin dashboard.
type Stats struct {
	TotalUsers   int64
	TotalStores  int64
	TotalRatings int64
}
