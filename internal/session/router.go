package session

import (
	"fmt"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// DashboardKind is the view selected for a session.
type DashboardKind int

const (
	LoginForm DashboardKind = iota
	AdminDashboard
	OwnerDashboard
	UserDashboard
)

func (k DashboardKind) String() string {
	switch k {
	case LoginForm:
		return "login"
	case AdminDashboard:
		return "admin"
	case OwnerDashboard:
		return "owner"
	case UserDashboard:
		return "user"
	default:
		return fmt.Sprintf("DashboardKind(%d)", int(k))
	}
}

// Route selects the dashboard for an identity. A nil identity gets the login
// form; a role outside the known three is an error, never a fallback view.
func Route(id *domain.Identity) (DashboardKind, error) {
	if id == nil {
		return LoginForm, nil
	}
	switch id.Role {
	case domain.RoleAdmin:
		return AdminDashboard, nil
	case domain.RoleStoreOwner:
		return OwnerDashboard, nil
	case domain.RoleUser:
		return UserDashboard, nil
	default:
		return LoginForm, fmt.Errorf("route role %q: %w", id.Role, domain.ErrValidation)
	}
}
