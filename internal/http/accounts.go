package httpserver

import (
	"errors"
	"net/http"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/repository"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = string(domain.RoleUser)
	}
	user, err := s.createUser(r, domain.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		s.respondDomainError(w, "register", err)
		return
	}
	s.respondSession(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	creds := domain.Credentials{Email: req.Email, Password: req.Password}
	if err := creds.Validate(); err != nil {
		s.respondDomainError(w, "login", err)
		return
	}

	user, hash, err := s.repo.Users.GetByEmail(r.Context(), creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
			return
		}
		s.respondDomainError(w, "login", err)
		return
	}
	if err := s.hasher.Compare(hash, creds.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
			return
		}
		s.respondDomainError(w, "login", err)
		return
	}
	s.respondSession(w, http.StatusOK, user)
}

func (s *Server) respondSession(w http.ResponseWriter, status int, user domain.User) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		s.respondDomainError(w, "issue token", err)
		return
	}
	s.respondJSON(w, status, authResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      toUserResponse(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	if err := s.revoker.Revoke(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		s.respondDomainError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req passwordRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.UserID == "" {
		req.UserID = claims.UserID
	}
	if req.UserID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		return
	}
	if req.ConfirmPassword == "" {
		req.ConfirmPassword = req.NewPassword
	}
	change := domain.PasswordChange{
		UserID:  req.UserID,
		Current: req.CurrentPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmPassword,
	}
	if err := change.Validate(); err != nil {
		s.respondDomainError(w, "update password", err)
		return
	}

	hash, err := s.repo.Users.PasswordHash(r.Context(), change.UserID)
	if err != nil {
		s.respondDomainError(w, "update password", err)
		return
	}
	if err := s.hasher.Compare(hash, change.Current); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			err = domain.FieldError("current_password", "current password is incorrect")
		}
		s.respondDomainError(w, "update password", err)
		return
	}
	newHash, err := s.hasher.Hash(change.New)
	if err != nil {
		s.respondDomainError(w, "update password", err)
		return
	}
	if err := s.repo.Users.UpdatePassword(r.Context(), change.UserID, newHash); err != nil {
		s.respondDomainError(w, "update password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
