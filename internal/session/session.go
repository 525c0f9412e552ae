// Package session holds the authenticated identity and the rating edits a
// user is composing, and decides which dashboard the session sees.
//
// Lifecycle: a Session starts Unauthenticated. Login moves it to the state
// matching the identity's role; Logout is the only way back and discards the
// identity together with every pending draft. Data refreshes and dashboard
// actions never change the state.
package session

import (
	"fmt"
	"sync"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// State is a node of the session state machine.
type State int

const (
	Unauthenticated State = iota
	Admin
	Owner
	User
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	case User:
		return "user"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is explicitly scoped session state. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	identity *domain.Identity
	drafts   *Drafts
	epoch    uint64
}

// New returns an unauthenticated session.
func New() *Session {
	return &Session{drafts: NewDrafts()}
}

// Login applies a successful login or registration outcome.
func (s *Session) Login(id domain.Identity) error {
	if _, err := domain.ParseRole(string(id.Role)); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if id.UserID == "" {
		return fmt.Errorf("login: %w", domain.FieldError("user_id", "identity has no user id"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return fmt.Errorf("login while %s: %w", stateOf(s.identity), domain.ErrInvalidTransition)
	}
	idCopy := id
	s.identity = &idCopy
	s.drafts = NewDrafts()
	s.epoch++
	return nil
}

// Logout clears the identity and every pending edit.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return fmt.Errorf("logout while unauthenticated: %w", domain.ErrInvalidTransition)
	}
	s.identity = nil
	s.drafts.Reset()
	s.drafts = NewDrafts()
	s.epoch++
	return nil
}

// Identity returns a copy of the held identity.
func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// State reports the current state machine node.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stateOf(s.identity)
}

// Dashboard routes the current identity.
func (s *Session) Dashboard() (DashboardKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Route(s.identity)
}

// Drafts returns the pending-edit store of the current login.
func (s *Session) Drafts() *Drafts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts
}

// Epoch changes on every login and logout. Dashboards compare it to detect that
// the identity they were built for is gone.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func stateOf(id *domain.Identity) State {
	if id == nil {
		return Unauthenticated
	}
	switch id.Role {
	case domain.RoleAdmin:
		return Admin
	case domain.RoleStoreOwner:
		return Owner
	default:
		return User
	}
}
