package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role determines which dashboard is reachable and which mutations are permitted.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleStoreOwner Role = "store_owner"
)

// ParseRole rejects anything outside the three known roles.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.TrimSpace(raw)); r {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return r, nil
	default:
		return "", FieldError("role", "role must be one of admin, user, store_owner")
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is a platform account. The password hash never leaves the repository layer.
type User struct {
	ID        string
	Name      string
	Email     string
	Address   string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the authenticated principal held by a session.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
	Token  string
}

const (
	minNameLen    = 5
	maxNameLen    = 60
	maxAddressLen = 400
	minPassLen    = 8
	maxPassLen    = 16
	passSpecials  = "!@#$%^&*"
)

// NewUser is the structured input for registration and admin user creation.
type NewUser struct {
	Name     string
	Email    string
	Address  string
	Role     Role
	Password string
}

// Normalize trims whitespace and lower-cases the email.
func (in NewUser) Normalize() NewUser {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.Role = Role(strings.TrimSpace(string(in.Role)))
	return in
}

// Cancelled reports whether a required field was left empty, which the admin
// form treats as an abandoned entry.
func (in NewUser) Cancelled() bool {
	return in.Name == "" || in.Email == "" || in.Address == "" || in.Role == "" || in.Password == ""
}

// Validate checks every field and reports all problems at once.
func (in NewUser) Validate() error {
	verr := &ValidationError{}
	if n := utf8.RuneCountInString(in.Name); n < minNameLen || n > maxNameLen {
		verr.Add("name", "name must be 5-60 characters")
	}
	if !ValidEmail(in.Email) {
		verr.Add("email", "valid email required")
	}
	if utf8.RuneCountInString(in.Address) > maxAddressLen {
		verr.Add("address", "address too long (max 400 chars)")
	}
	if !in.Role.Valid() {
		verr.Add("role", "role must be one of admin, user, store_owner")
	}
	if err := ValidatePassword(in.Password); err != nil {
		verr.Add("password", err.Error())
	}
	return verr.OrNil()
}

// Credentials is the login payload.
type Credentials struct {
	Email    string
	Password string
}

// Validate applies the same email and password rules as registration.
func (c Credentials) Validate() error {
	verr := &ValidationError{}
	if !ValidEmail(c.Email) {
		verr.Add("email", "valid email required")
	}
	if c.Password == "" {
		verr.Add("password", "password is required")
	}
	return verr.OrNil()
}

// PasswordChange is the structured input for the change-password form.
type PasswordChange struct {
	UserID  string
	Current string
	New     string
	Confirm string
}

// Cancelled reports an abandoned change-password form.
func (p PasswordChange) Cancelled() bool {
	return p.Current == "" || p.New == ""
}

// Validate checks the confirmation and the password policy together.
func (p PasswordChange) Validate() error {
	verr := &ValidationError{}
	if p.Current == "" {
		verr.Add("current_password", "current password is required")
	}
	if p.New != p.Confirm {
		verr.Add("confirm_password", "passwords do not match")
	}
	if err := ValidatePassword(p.New); err != nil {
		verr.Add("new_password", err.Error())
	}
	return verr.OrNil()
}

// ValidEmail only requires an '@' with something on both sides.
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1
}

type passwordPolicyError struct{}

func (passwordPolicyError) Error() string {
	return "8-16 chars, 1 uppercase, 1 special character"
}

// ValidatePassword enforces 8-16 characters drawn from letters, digits and
// !@#$%^&*, with at least one uppercase letter and one of the specials.
func ValidatePassword(password string) error {
	if len(password) < minPassLen || len(password) > maxPassLen {
		return passwordPolicyError{}
	}
	var hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case strings.ContainsRune(passSpecials, r):
			hasSpecial = true
		default:
			return passwordPolicyError{}
		}
	}
	if !hasUpper || !hasSpecial {
		return passwordPolicyError{}
	}
	return nil
}
