package apiclient

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type passwordRequest struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type storeRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID string `json:"owner_id"`
}

type storeUpdateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ratingRequest struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type authPayload struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      userPayload `json:"user"`
}

type userPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u userPayload) toDomain() domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      domain.Role(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type storePayload struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       string    `json:"owner_id"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	MyRating      int       `json:"my_rating"`
	MyComment     string    `json:"my_comment"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s storePayload) toDomain() domain.StoreView {
	return domain.StoreView{
		Store: domain.Store{
			ID:        s.ID,
			Name:      s.Name,
			Email:     s.Email,
			Address:   s.Address,
			OwnerID:   s.OwnerID,
			CreatedAt: s.CreatedAt,
		},
		AverageRating: s.AverageRating,
		TotalRatings:  s.TotalRatings,
		MyRating:      s.MyRating,
		MyComment:     s.MyComment,
	}
}

type ratingPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StoreID   string    `json:"store_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r ratingPayload) toDomain() domain.Rating {
	return domain.Rating{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Value:     r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type ratingViewPayload struct {
	ratingPayload
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	StoreName string `json:"store_name"`
}

func (v ratingViewPayload) toDomain() domain.RatingView {
	return domain.RatingView{
		Rating:    v.ratingPayload.toDomain(),
		UserName:  v.UserName,
		UserEmail: v.UserEmail,
		StoreName: v.StoreName,
	}
}

type statsPayload struct {
	TotalUsers   int64 `json:"total_users"`
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int64 `json:"total_ratings"`
}

type errorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func (e errorPayload) message(status int) string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(status)
}
